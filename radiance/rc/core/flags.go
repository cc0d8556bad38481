package core

import (
	"fmt"
	"strings"
)

// Flags toggles debug views and optional shading in the composite pass.
type Flags uint32

const (
	FlagSDF          Flags = 1 << 0
	FlagVoronoi      Flags = 1 << 1
	FlagBounce       Flags = 1 << 2
	FlagMerge0       Flags = 1 << 3
	FlagMerge1       Flags = 1 << 4
	FlagApplyNormals Flags = 1 << 5
	FlagProbe        Flags = 1 << 6
	FlagLight        Flags = 1 << 7
)

// DebugView is the buffer the composite pass shows.
type DebugView int

const (
	ViewLit DebugView = iota
	ViewSDF
	ViewVoronoi
	ViewMerge0
	ViewMerge1
	ViewProbe
	ViewBounce
	ViewLight
)

// debugOrder is the precedence used by composite.wgsl; the first set flag wins.
var debugOrder = []struct {
	flag Flags
	view DebugView
}{
	{FlagSDF, ViewSDF},
	{FlagVoronoi, ViewVoronoi},
	{FlagMerge0, ViewMerge0},
	{FlagMerge1, ViewMerge1},
	{FlagProbe, ViewProbe},
	{FlagBounce, ViewBounce},
	{FlagLight, ViewLight},
}

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// Toggle flips one flag.
func (f Flags) Toggle(flag Flags) Flags {
	return f ^ flag
}

// DebugView resolves which view is displayed when several flags are set.
func (f Flags) DebugView() DebugView {
	for _, d := range debugOrder {
		if f.Has(d.flag) {
			return d.view
		}
	}
	return ViewLit
}

var flagNames = map[string]Flags{
	"sdf":     FlagSDF,
	"voronoi": FlagVoronoi,
	"bounce":  FlagBounce,
	"merge0":  FlagMerge0,
	"merge1":  FlagMerge1,
	"normals": FlagApplyNormals,
	"probe":   FlagProbe,
	"light":   FlagLight,
}

// ParseFlags reads a comma separated list such as "sdf,normals".
// Unknown names are returned in the second value.
func ParseFlags(s string) (Flags, []string) {
	var f Flags
	var unknown []string
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if flag, ok := flagNames[name]; ok {
			f |= flag
		} else {
			unknown = append(unknown, name)
		}
	}
	return f, unknown
}

func (v DebugView) String() string {
	switch v {
	case ViewSDF:
		return "sdf"
	case ViewVoronoi:
		return "voronoi"
	case ViewMerge0:
		return "merge0"
	case ViewMerge1:
		return "merge1"
	case ViewProbe:
		return "probe"
	case ViewBounce:
		return "bounce"
	case ViewLight:
		return "light"
	default:
		return "lit"
	}
}

// flagOrder lists flags by bit, used for stable names.
var flagOrder = []struct {
	flag Flags
	name string
}{
	{FlagSDF, "sdf"},
	{FlagVoronoi, "voronoi"},
	{FlagBounce, "bounce"},
	{FlagMerge0, "merge0"},
	{FlagMerge1, "merge1"},
	{FlagApplyNormals, "normals"},
	{FlagProbe, "probe"},
	{FlagLight, "light"},
}

// String lists the set flags in bit order, comma separated.
func (f Flags) String() string {
	var names []string
	for _, e := range flagOrder {
		if f.Has(e.flag) {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, ",")
}

func (f Flags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Flags) UnmarshalText(text []byte) error {
	parsed, unknown := ParseFlags(string(text))
	if len(unknown) > 0 {
		return fmt.Errorf("unknown radiance flags: %s", strings.Join(unknown, ","))
	}
	*f = parsed
	return nil
}
