package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Preset is a saved radiance scene.
type Preset struct {
	Config Config        `json:"config"`
	Flags  Flags         `json:"flags"`
	Camera PresetCamera  `json:"camera"`
	Shapes []PresetShape `json:"shapes"`
}

type PresetCamera struct {
	Position [2]float32 `json:"position"`
	Zoom     float32    `json:"zoom"`
}

// PresetShape is one emitter or occluder. Occluders have Emitter false and
// are loaded with zero emission.
type PresetShape struct {
	Kind        string     `json:"kind"`
	Radius      float32    `json:"radius,omitempty"`
	HalfExtents [2]float32 `json:"half_extents,omitempty"`
	Position    [2]float32 `json:"position"`
	Rotation    float32    `json:"rotation,omitempty"`
	Emitter     bool       `json:"emitter"`
	Color       [3]float32 `json:"color,omitempty"`
	Intensity   float32    `json:"intensity,omitempty"`
	// Parent is the index of the parent shape in the preset, or -1.
	Parent int    `json:"parent"`
	Hidden bool   `json:"hidden,omitempty"`
	Name   string `json:"name,omitempty"`
}

// NewPresetShape describes shape for serialization.
func NewPresetShape(shape Shape, position mgl32.Vec2, rotation float32) PresetShape {
	ps := PresetShape{
		Kind:     ShapeKind(shape),
		Position: [2]float32{position.X(), position.Y()},
		Rotation: rotation,
		Parent:   -1,
	}
	switch s := shape.(type) {
	case Circle:
		ps.Radius = s.Radius
	case Rect:
		ps.HalfExtents = [2]float32{s.HalfExtents.X(), s.HalfExtents.Y()}
	}
	return ps
}

// Shape decodes the geometry.
func (ps PresetShape) Shape() (Shape, error) {
	switch ps.Kind {
	case "circle":
		return Circle{Radius: ps.Radius}, nil
	case "rect":
		return Rect{HalfExtents: mgl32.Vec2{ps.HalfExtents[0], ps.HalfExtents[1]}}, nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", ps.Kind)
	}
}

func (ps PresetShape) Center() mgl32.Vec2 {
	return mgl32.Vec2{ps.Position[0], ps.Position[1]}
}

// Records appends every visible shape of the preset in order. Parent links
// are ignored; positions are taken as world positions.
func (p *Preset) Records(out *ShapeRecords) error {
	for i, ps := range p.Shapes {
		if ps.Hidden {
			continue
		}
		shape, err := ps.Shape()
		if err != nil {
			return fmt.Errorf("preset shape %d: %w", i, err)
		}
		if ps.Emitter {
			out.Append(shape, ps.Center(), ps.Rotation, ps.Color, ps.Intensity)
		} else {
			out.Append(shape, ps.Center(), ps.Rotation, [3]float32{}, 0)
		}
	}
	return nil
}

// CameraState returns the saved camera, defaulting zoom to 1.
func (p *Preset) CameraState() *Camera2D {
	cam := NewCamera2D()
	cam.Position = mgl32.Vec2{p.Camera.Position[0], p.Camera.Position[1]}
	if p.Camera.Zoom > 0 {
		cam.Zoom = p.Camera.Zoom
	}
	return cam
}

func ReadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}
	p := &Preset{Config: DefaultConfig()}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode preset %s: %w", path, err)
	}
	p.Config = p.Config.Sanitize()
	return p, nil
}

func WritePreset(path string, p *Preset) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write preset %s: %w", path, err)
	}
	return nil
}
