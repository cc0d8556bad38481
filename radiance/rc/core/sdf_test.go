package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCircleDistance(t *testing.T) {
	c := CircleRecord{Radius: 10, Center: mgl32.Vec2{5, 5}}

	assert.InDelta(t, -10, CircleDistance(mgl32.Vec2{5, 5}, c), 1e-5)
	assert.InDelta(t, 0, CircleDistance(mgl32.Vec2{15, 5}, c), 1e-5)
	assert.InDelta(t, 10, CircleDistance(mgl32.Vec2{5, 25}, c), 1e-5)
}

func TestRectDistance(t *testing.T) {
	r := RectRecord{HalfExtents: mgl32.Vec2{10, 5}}

	tests := []struct {
		name string
		p    mgl32.Vec2
		want float32
	}{
		{"center", mgl32.Vec2{0, 0}, -5},
		{"right edge", mgl32.Vec2{10, 0}, 0},
		{"outside x", mgl32.Vec2{13, 0}, 3},
		{"corner", mgl32.Vec2{13, 9}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RectDistance(tt.p, r), 1e-4)
		})
	}
}

func TestRectDistance_Rotated(t *testing.T) {
	// a wide rect rotated a quarter turn becomes tall
	r := RectRecord{HalfExtents: mgl32.Vec2{10, 2}, Rotation: math.Pi / 2}

	assert.InDelta(t, 0, RectDistance(mgl32.Vec2{0, 10}, r), 1e-4)
	assert.InDelta(t, 0, RectDistance(mgl32.Vec2{2, 0}, r), 1e-4)
	assert.Greater(t, RectDistance(mgl32.Vec2{10, 0}, r), float32(7))
}

func TestEvaluate_EmptySceneIsBackground(t *testing.T) {
	var r ShapeRecords
	d, emit := r.Evaluate(mgl32.Vec2{12, 34})

	assert.Equal(t, Background, d)
	assert.Equal(t, [3]float32{}, emit)
}

func TestBackground_FitsHalfFloat(t *testing.T) {
	// 0x7bff is the largest finite binary16
	assert.Equal(t, HalfToFloat32(0x7bff), Background)
	assert.False(t, math.IsInf(float64(Background), 0))
}

func TestEvaluate_ClosestShapeCarriesEmission(t *testing.T) {
	var r ShapeRecords
	r.Append(Circle{Radius: 5}, mgl32.Vec2{0, 0}, 0, [3]float32{1, 0.5, 0}, 2)
	// occluder carries no color
	r.Append(Rect{HalfExtents: mgl32.Vec2{5, 5}}, mgl32.Vec2{100, 0}, 0, [3]float32{}, 0)

	d, emit := r.Evaluate(mgl32.Vec2{10, 0})
	assert.InDelta(t, 5, d, 1e-5)
	assert.Equal(t, [3]float32{2, 1, 0}, emit)

	d, emit = r.Evaluate(mgl32.Vec2{90, 0})
	assert.InDelta(t, 5, d, 1e-5)
	assert.Equal(t, [3]float32{}, emit)
}
