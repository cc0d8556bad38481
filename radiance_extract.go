package gekko

import (
	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
)

// radianceExtractSystem rebuilds the frame's shape records from the ECS.
// Records follow query order, so unchanged scenes produce identical bytes.
// Shapes whose bounds plus the ray reach miss the view are culled once the
// viewport size is known.
func radianceExtractSystem(cmd *Commands, settings *RadianceSettings, frame *RadianceFrame) {
	frame.Records.Reset()
	native := frame.Size.Native
	reach := settings.Config.RayReach()

	MakeQuery3[TransformComponent, EmitterComponent, OccluderComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, em *EmitterComponent, oc *OccluderComponent) bool {
		var (
			shape     core.Shape
			color     [3]float32
			intensity float32
		)
		switch {
		case em != nil:
			shape, color, intensity = em.Shape, em.Color, max(em.Intensity, 0)
		case oc != nil:
			shape = oc.Shape
		default:
			return true
		}
		if shape == nil || !nearestVisibility(cmd, eid).Visible() {
			return true
		}

		shape = scaleShape(shape, tr.Scale)
		center := tr.Position2D()
		if frame.HasSize && !frame.Camera.VisibleCircle(center, shape.BoundingRadius(), reach, native[0], native[1]) {
			return true
		}
		frame.Records.Append(shape, center, core.RotationFromQuat(tr.Rotation), color, intensity)
		return true
	}, EmitterComponent{}, OccluderComponent{})
}

// scaleShape applies the XY world scale. An unset (zero) scale is identity.
func scaleShape(shape core.Shape, scale mgl32.Vec3) core.Shape {
	if scale == (mgl32.Vec3{}) {
		return shape
	}
	sx, sy := abs32(scale.X()), abs32(scale.Y())
	switch s := shape.(type) {
	case core.Circle:
		return core.Circle{Radius: s.Radius * max(sx, sy)}
	case core.Rect:
		return core.Rect{HalfExtents: mgl32.Vec2{s.HalfExtents.X() * sx, s.HalfExtents.Y() * sy}}
	default:
		panic("unknown shape")
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
