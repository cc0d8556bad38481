package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Shape is the geometry carried by emitters and occluders.
// Implemented by Circle and Rect only.
type Shape interface {
	// BoundingRadius is the radius of a circle centered on the shape that contains it.
	BoundingRadius() float32
	isShape()
}

type Circle struct {
	Radius float32
}

type Rect struct {
	HalfExtents mgl32.Vec2
}

func (Circle) isShape() {}
func (Rect) isShape()   {}

func (c Circle) BoundingRadius() float32 { return c.Radius }

func (r Rect) BoundingRadius() float32 { return r.HalfExtents.Len() }

// ShapeKind names a shape variant, used by presets and logs.
func ShapeKind(s Shape) string {
	switch s.(type) {
	case Circle:
		return "circle"
	case Rect:
		return "rect"
	default:
		panic(fmt.Sprintf("unknown shape %T", s))
	}
}

// RotationFromQuat returns the 2D rotation angle of a 3D rotation, measured as
// the angle of the rotated +X axis in the XY plane.
func RotationFromQuat(q mgl32.Quat) float32 {
	right := q.Rotate(mgl32.Vec3{1, 0, 0})
	return float32(math.Atan2(float64(right.Y()), float64(right.X())))
}
