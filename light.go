package gekko

import (
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

// EmitterComponent makes an entity cast light. Color is linear RGB.
type EmitterComponent struct {
	Shape     core.Shape
	Intensity float32
	Color     [3]float32
}

// OccluderComponent blocks light without emitting any.
type OccluderComponent struct {
	Shape core.Shape
}

// VisibilityComponent hides an entity and, through Parent links, its
// descendants. InheritedHidden is maintained by the hierarchy module.
type VisibilityComponent struct {
	Hidden          bool
	InheritedHidden bool
}

// NameComponent labels an entity in presets and logs.
type NameComponent struct {
	Name string
}

func (v *VisibilityComponent) Visible() bool {
	return v == nil || !(v.Hidden || v.InheritedHidden)
}
