package core

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// CircleStride is the WGSL storage stride of a circle record.
	//   radius: f32            -- 0
	//   center: vec2<f32>      -- 8
	//   emit: vec3<f32>        -- 16
	//   intensity: f32         -- 28
	CircleStride = 32
	// RectStride is the WGSL storage stride of a rect record.
	//   half_extents: vec2<f32> -- 0
	//   center: vec2<f32>       -- 8
	//   rotation: f32           -- 16
	//   emit: vec3<f32>         -- 32
	//   intensity: f32          -- 44
	RectStride = 48
	// RecordHeader is the size of the count prefix, padded to the array alignment.
	RecordHeader = 16
)

type CircleRecord struct {
	Radius    float32
	Center    mgl32.Vec2
	Emit      [3]float32
	Intensity float32
}

type RectRecord struct {
	HalfExtents mgl32.Vec2
	Center      mgl32.Vec2
	Rotation    float32
	Emit        [3]float32
	Intensity   float32
}

// ShapeRecords is the per-frame staging copy of the two GPU shape arrays.
type ShapeRecords struct {
	Circles []CircleRecord
	Rects   []RectRecord
}

// Reset drops all records but keeps the backing storage.
func (r *ShapeRecords) Reset() {
	r.Circles = r.Circles[:0]
	r.Rects = r.Rects[:0]
}

func (r *ShapeRecords) Len() int {
	return len(r.Circles) + len(r.Rects)
}

// Append records one shape placed at center with the given rotation.
// Occluders pass a zero color and intensity.
func (r *ShapeRecords) Append(shape Shape, center mgl32.Vec2, rotation float32, color [3]float32, intensity float32) {
	switch s := shape.(type) {
	case Circle:
		r.Circles = append(r.Circles, CircleRecord{
			Radius:    s.Radius,
			Center:    center,
			Emit:      color,
			Intensity: intensity,
		})
	case Rect:
		r.Rects = append(r.Rects, RectRecord{
			HalfExtents: s.HalfExtents,
			Center:      center,
			Rotation:    rotation,
			Emit:        color,
			Intensity:   intensity,
		})
	default:
		panic(fmt.Sprintf("unknown shape %T", shape))
	}
}

// CircleBytes packs the circle array as {count, pad, data[]}.
// At least one record slot is always emitted.
func (r *ShapeRecords) CircleBytes() []byte {
	n := max(len(r.Circles), 1)
	buf := make([]byte, RecordHeader+n*CircleStride)
	binary.LittleEndian.PutUint32(buf[0:], uint32(len(r.Circles)))

	for i, c := range r.Circles {
		o := RecordHeader + i*CircleStride
		putF32(buf, o+0, c.Radius)
		putF32(buf, o+8, c.Center[0])
		putF32(buf, o+12, c.Center[1])
		putVec3(buf, o+16, c.Emit)
		putF32(buf, o+28, c.Intensity)
	}
	return buf
}

// RectBytes packs the rect array as {count, pad, data[]}.
func (r *ShapeRecords) RectBytes() []byte {
	n := max(len(r.Rects), 1)
	buf := make([]byte, RecordHeader+n*RectStride)
	binary.LittleEndian.PutUint32(buf[0:], uint32(len(r.Rects)))

	for i, rc := range r.Rects {
		o := RecordHeader + i*RectStride
		putF32(buf, o+0, rc.HalfExtents[0])
		putF32(buf, o+4, rc.HalfExtents[1])
		putF32(buf, o+8, rc.Center[0])
		putF32(buf, o+12, rc.Center[1])
		putF32(buf, o+16, rc.Rotation)
		putVec3(buf, o+32, rc.Emit)
		putF32(buf, o+44, rc.Intensity)
	}
	return buf
}

func putF32(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
}

func putVec3(buf []byte, offset int, v [3]float32) {
	putF32(buf, offset, v[0])
	putF32(buf, offset+4, v[1])
	putF32(buf, offset+8, v[2])
}
