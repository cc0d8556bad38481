package core

import (
	"encoding/binary"
	"math"
)

const (
	MinScaleFactor  = 0.25
	MaxScaleFactor  = 10
	MinInterval     = 0.01
	MaxCascadeCount = 8
	MaxProbeBase    = 16
)

// Config drives the radiance cascades for one view.
type Config struct {
	// Interval is the ray length of cascade 0 in world units.
	Interval float32 `json:"interval"`
	// ScaleFactor is the native:scaled downsample ratio.
	ScaleFactor  float32 `json:"scale_factor"`
	CascadeCount uint32  `json:"cascade_count"`
	// ProbeBase sets the probe spacing and angular density of cascade 0.
	ProbeBase     uint32  `json:"probe_base"`
	EdgeHighlight float32 `json:"edge_highlight"`
	LightZ        float32 `json:"light_z"`
}

func DefaultConfig() Config {
	return Config{
		Interval:      6,
		ScaleFactor:   1,
		CascadeCount:  6,
		ProbeBase:     1,
		EdgeHighlight: 1,
		LightZ:        2,
	}
}

// Sanitize clamps every field into the range the pipeline can allocate for.
func (c Config) Sanitize() Config {
	if !(c.Interval >= MinInterval) {
		c.Interval = MinInterval
	}
	if !(c.ScaleFactor >= MinScaleFactor) {
		c.ScaleFactor = MinScaleFactor
	}
	if c.ScaleFactor > MaxScaleFactor {
		c.ScaleFactor = MaxScaleFactor
	}
	c.CascadeCount = clampU32(c.CascadeCount, 1, MaxCascadeCount)
	c.ProbeBase = clampU32(c.ProbeBase, 1, MaxProbeBase)
	if c.EdgeHighlight < 0 {
		c.EdgeHighlight = 0
	}
	return c
}

// SizingEqual reports whether two configs produce the same render targets.
func (c Config) SizingEqual(o Config) bool {
	return c.ScaleFactor == o.ScaleFactor &&
		c.CascadeCount == o.CascadeCount &&
		c.ProbeBase == o.ProbeBase
}

// CascadeStart is the distance at which rays of cascade c begin.
func (c Config) CascadeStart(cascade uint32) float32 {
	return c.Interval * (pow4(cascade) - 1) / 3
}

// CascadeLength is the ray length of cascade c.
func (c Config) CascadeLength(cascade uint32) float32 {
	return c.Interval * pow4(cascade)
}

// RayReach is the farthest distance any ray travels.
func (c Config) RayReach() float32 {
	return c.CascadeStart(c.CascadeCount)
}

// BlockSize is the edge, in scaled texels, of one probe block in cascade c.
func (c Config) BlockSize(cascade uint32) uint32 {
	return 2 * max(c.ProbeBase, 1) << cascade
}

func pow4(n uint32) float32 {
	return float32(math.Pow(4, float64(n)))
}

func clampU32(v, lo, hi uint32) uint32 {
	return min(max(v, lo), hi)
}

// GpuConfigSize is the byte size of the config uniform.
const GpuConfigSize = 48

// GpuConfig is the uniform shared by every pass.
//
//	native: vec2<u32>        -- 0
//	scaled: vec2<u32>        -- 8
//	probe_base: u32          -- 16
//	interval: f32            -- 20
//	scale: f32               -- 24
//	cascade_count: u32       -- 28
//	flags: u32               -- 32
//	edge_highlight: f32      -- 36
//	light_z: f32             -- 40
type GpuConfig struct {
	Native        [2]uint32
	Scaled        [2]uint32
	ProbeBase     uint32
	Interval      float32
	Scale         float32
	CascadeCount  uint32
	Flags         Flags
	EdgeHighlight float32
	LightZ        float32
}

func NewGpuConfig(cfg Config, size ComputedSize, flags Flags) GpuConfig {
	return GpuConfig{
		Native:        size.Native,
		Scaled:        size.Scaled,
		ProbeBase:     cfg.ProbeBase,
		Interval:      cfg.Interval,
		Scale:         cfg.ScaleFactor,
		CascadeCount:  cfg.CascadeCount,
		Flags:         flags,
		EdgeHighlight: cfg.EdgeHighlight,
		LightZ:        cfg.LightZ,
	}
}

func (g GpuConfig) Bytes() []byte {
	buf := make([]byte, GpuConfigSize)
	binary.LittleEndian.PutUint32(buf[0:], g.Native[0])
	binary.LittleEndian.PutUint32(buf[4:], g.Native[1])
	binary.LittleEndian.PutUint32(buf[8:], g.Scaled[0])
	binary.LittleEndian.PutUint32(buf[12:], g.Scaled[1])
	binary.LittleEndian.PutUint32(buf[16:], g.ProbeBase)
	putF32(buf, 20, g.Interval)
	putF32(buf, 24, g.Scale)
	binary.LittleEndian.PutUint32(buf[28:], g.CascadeCount)
	binary.LittleEndian.PutUint32(buf[32:], uint32(g.Flags))
	putF32(buf, 36, g.EdgeHighlight)
	putF32(buf, 40, g.LightZ)
	return buf
}
