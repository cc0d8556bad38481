package gekko

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is the world transform. On entities with a Parent it is
// derived from LocalTransformComponent by the hierarchy system.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// LocalTransformComponent is relative to the Parent's world transform.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

func IdentityTransform() TransformComponent {
	return TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Position2D returns the XY world position.
func (tr *TransformComponent) Position2D() mgl32.Vec2 {
	return tr.Position.Vec2()
}

// MaxScale2D is the largest absolute XY scale, used to grow bounding circles.
func (tr *TransformComponent) MaxScale2D() float32 {
	sx, sy := tr.Scale.X(), tr.Scale.Y()
	if sx < 0 {
		sx = -sx
	}
	if sy < 0 {
		sy = -sy
	}
	return max(sx, sy)
}

// compose returns parent ∘ local. Scale is applied per axis before rotation so
// mirrored parents keep their sign.
func compose(parent *TransformComponent, local *LocalTransformComponent) TransformComponent {
	scaledLocalPos := mgl32.Vec3{
		local.Position.X() * parent.Scale.X(),
		local.Position.Y() * parent.Scale.Y(),
		local.Position.Z() * parent.Scale.Z(),
	}
	return TransformComponent{
		Position: parent.Position.Add(parent.Rotation.Rotate(scaledLocalPos)),
		Rotation: parent.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			parent.Scale.X() * local.Scale.X(),
			parent.Scale.Y() * local.Scale.Y(),
			parent.Scale.Z() * local.Scale.Z(),
		},
	}
}
