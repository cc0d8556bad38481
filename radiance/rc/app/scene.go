package app

import (
	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape is one emitter or occluder of the demo scene.
type Shape struct {
	Shape    core.Shape
	Position mgl32.Vec2
	Rotation float32
	// Spin is the angular speed in radians per second.
	Spin      float32
	Emitter   bool
	Color     [3]float32
	Intensity float32
}

type Scene struct {
	Shapes []Shape
	// Cursor, when set, is the index of the shape that follows the mouse.
	Cursor int
}

// DefaultScene is a few colored lights behind a row of spinning walls.
func DefaultScene() *Scene {
	s := &Scene{Cursor: 0}
	s.Shapes = append(s.Shapes,
		Shape{Shape: core.Circle{Radius: 12}, Emitter: true, Color: [3]float32{1, 0.85, 0.6}, Intensity: 2},
		Shape{Shape: core.Circle{Radius: 20}, Position: mgl32.Vec2{-320, 180}, Emitter: true, Color: [3]float32{0.2, 0.4, 1}, Intensity: 1.5},
		Shape{Shape: core.Circle{Radius: 16}, Position: mgl32.Vec2{340, -160}, Emitter: true, Color: [3]float32{1, 0.2, 0.3}, Intensity: 1.5},
		Shape{Shape: core.Rect{HalfExtents: mgl32.Vec2{60, 18}}, Position: mgl32.Vec2{360, 200}, Emitter: true, Color: [3]float32{0.3, 1, 0.4}, Intensity: 0.8},
	)
	for i := -3; i <= 3; i++ {
		spin := float32(0.3)
		if i%2 != 0 {
			spin = -spin
		}
		s.Shapes = append(s.Shapes, Shape{
			Shape:    core.Rect{HalfExtents: mgl32.Vec2{8, 60}},
			Position: mgl32.Vec2{float32(i) * 120, -40},
			Spin:     spin,
		})
	}
	s.Shapes = append(s.Shapes, Shape{Shape: core.Circle{Radius: 40}, Position: mgl32.Vec2{-160, 200}})
	return s
}

// SceneFromPreset builds a scene from saved shapes. Parent links are not
// followed; the standalone app has no hierarchy.
func SceneFromPreset(p *core.Preset) (*Scene, error) {
	s := &Scene{Cursor: -1}
	for _, ps := range p.Shapes {
		if ps.Hidden {
			continue
		}
		shape, err := ps.Shape()
		if err != nil {
			return nil, err
		}
		s.Shapes = append(s.Shapes, Shape{
			Shape:     shape,
			Position:  ps.Center(),
			Rotation:  ps.Rotation,
			Emitter:   ps.Emitter,
			Color:     ps.Color,
			Intensity: ps.Intensity,
		})
	}
	return s, nil
}

func (s *Scene) Update(dt float32) {
	for i := range s.Shapes {
		s.Shapes[i].Rotation += s.Shapes[i].Spin * dt
	}
}

// MoveCursor places the cursor shape, if any, at p.
func (s *Scene) MoveCursor(p mgl32.Vec2) {
	if s.Cursor >= 0 && s.Cursor < len(s.Shapes) {
		s.Shapes[s.Cursor].Position = p
	}
}

// Records rebuilds out, culling shapes outside the camera view grown by reach.
func (s *Scene) Records(out *core.ShapeRecords, cam *core.Camera2D, width, height uint32, reach float32) {
	out.Reset()
	for _, sh := range s.Shapes {
		if !cam.VisibleCircle(sh.Position, sh.Shape.BoundingRadius(), reach, width, height) {
			continue
		}
		if sh.Emitter {
			out.Append(sh.Shape, sh.Position, sh.Rotation, sh.Color, sh.Intensity)
		} else {
			out.Append(sh.Shape, sh.Position, sh.Rotation, [3]float32{}, 0)
		}
	}
}
