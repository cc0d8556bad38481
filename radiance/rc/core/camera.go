package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera2D is an orthographic camera looking down -Z onto the XY plane.
// One world unit maps to one native pixel at Zoom 1.
type Camera2D struct {
	Position mgl32.Vec2
	Zoom     float32
}

func NewCamera2D() *Camera2D {
	return &Camera2D{Zoom: 1}
}

func (c *Camera2D) zoom() float32 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}

// HalfExtents is half the visible world area for a viewport.
func (c *Camera2D) HalfExtents(width, height uint32) mgl32.Vec2 {
	z := c.zoom()
	return mgl32.Vec2{float32(width) / (2 * z), float32(height) / (2 * z)}
}

// ViewProj maps world space to clip space.
func (c *Camera2D) ViewProj(width, height uint32) mgl32.Mat4 {
	h := c.HalfExtents(width, height)
	return mgl32.Ortho(
		c.Position.X()-h.X(), c.Position.X()+h.X(),
		c.Position.Y()-h.Y(), c.Position.Y()+h.Y(),
		-1000, 1000,
	)
}

// Bounds returns the world space rectangle visible in the viewport.
func (c *Camera2D) Bounds(width, height uint32) (mgl32.Vec2, mgl32.Vec2) {
	h := c.HalfExtents(width, height)
	return c.Position.Sub(h), c.Position.Add(h)
}

// WorldAt maps a viewport position, (0,0) top left and (1,1) bottom right,
// to world space.
func (c *Camera2D) WorldAt(uv mgl32.Vec2, width, height uint32) mgl32.Vec2 {
	h := c.HalfExtents(width, height)
	return c.Position.Add(mgl32.Vec2{(uv.X()*2 - 1) * h.X(), (1 - uv.Y()*2) * h.Y()})
}

// VisibleCircle reports whether a circle intersects the view grown by margin.
func (c *Camera2D) VisibleCircle(center mgl32.Vec2, radius, margin float32, width, height uint32) bool {
	lo, hi := c.Bounds(width, height)
	r := radius + margin
	return center.X()+r >= lo.X() && center.X()-r <= hi.X() &&
		center.Y()+r >= lo.Y() && center.Y()-r <= hi.Y()
}

// ViewUniformSize is the byte size of the view uniform.
//
//	clip_from_world: mat4x4<f32> -- 0
//	world_from_clip: mat4x4<f32> -- 64
//	viewport: vec4<f32>          -- 128 (width, height, zoom, 0)
const ViewUniformSize = 144

func (c *Camera2D) UniformBytes(width, height uint32) []byte {
	vp := c.ViewProj(width, height)
	inv := vp.Inv()

	buf := make([]byte, ViewUniformSize)
	for i, v := range vp {
		putF32(buf, i*4, v)
	}
	for i, v := range inv {
		putF32(buf, 64+i*4, v)
	}
	putF32(buf, 128, float32(width))
	putF32(buf, 132, float32(height))
	putF32(buf, 136, c.zoom())
	return buf
}
