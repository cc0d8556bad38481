package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Background is the distance written where no shape exists. It is the
// largest finite half float so RGBA16F targets never hold Inf.
const Background float32 = 65504

func CircleDistance(p mgl32.Vec2, c CircleRecord) float32 {
	return p.Sub(c.Center).Len() - c.Radius
}

func RectDistance(p mgl32.Vec2, r RectRecord) float32 {
	d := p.Sub(r.Center)
	sin, cos := math.Sincos(float64(-r.Rotation))
	local := mgl32.Vec2{
		d.X()*float32(cos) - d.Y()*float32(sin),
		d.X()*float32(sin) + d.Y()*float32(cos),
	}
	qx := abs32(local.X()) - r.HalfExtents.X()
	qy := abs32(local.Y()) - r.HalfExtents.Y()

	outside := mgl32.Vec2{max(qx, 0), max(qy, 0)}.Len()
	inside := min(max(qx, qy), 0)
	return outside + inside
}

// Evaluate returns the signed distance from p to the closest shape and the
// emission (color times intensity) of that shape. This is the CPU twin of the
// SDF fragment shader.
func (r *ShapeRecords) Evaluate(p mgl32.Vec2) (float32, [3]float32) {
	dist := Background
	var emit [3]float32

	for _, c := range r.Circles {
		if d := CircleDistance(p, c); d < dist {
			dist = d
			emit = scale3(c.Emit, c.Intensity)
		}
	}
	for _, rc := range r.Rects {
		if d := RectDistance(p, rc); d < dist {
			dist = d
			emit = scale3(rc.Emit, rc.Intensity)
		}
	}
	return dist, emit
}

func scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
