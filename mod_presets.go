package gekko

import (
	"fmt"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
)

// SaveRadiancePreset writes every emitter and occluder to path, together with
// the current radiance config, debug flags and camera. Shapes are stored at
// their world position with scale baked in; parent links are kept as indices.
func SaveRadiancePreset(cmd *Commands, path string) error {
	preset := &core.Preset{Config: core.DefaultConfig()}
	if settings, ok := GetResource[RadianceSettings](cmd); ok {
		preset.Config = settings.Config
		preset.Flags = settings.Flags
	}
	if frame, ok := GetResource[RadianceFrame](cmd); ok && frame.Camera != nil {
		preset.Camera = core.PresetCamera{
			Position: [2]float32{frame.Camera.Position.X(), frame.Camera.Position.Y()},
			Zoom:     frame.Camera.Zoom,
		}
	}

	var order []EntityId
	index := make(map[EntityId]int)
	MakeQuery3[TransformComponent, EmitterComponent, OccluderComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, em *EmitterComponent, oc *OccluderComponent) bool {
		var ps core.PresetShape
		switch {
		case em != nil && em.Shape != nil:
			ps = core.NewPresetShape(scaleShape(em.Shape, tr.Scale), tr.Position2D(), core.RotationFromQuat(tr.Rotation))
			ps.Emitter = true
			ps.Color = em.Color
			ps.Intensity = em.Intensity
		case oc != nil && oc.Shape != nil:
			ps = core.NewPresetShape(scaleShape(oc.Shape, tr.Scale), tr.Position2D(), core.RotationFromQuat(tr.Rotation))
		default:
			return true
		}
		if vis, ok := GetComponent[VisibilityComponent](cmd, eid); ok {
			ps.Hidden = vis.Hidden
		}
		if name, ok := GetComponent[NameComponent](cmd, eid); ok {
			ps.Name = name.Name
		}
		index[eid] = len(order)
		order = append(order, eid)
		preset.Shapes = append(preset.Shapes, ps)
		return true
	}, EmitterComponent{}, OccluderComponent{})

	for i, eid := range order {
		if parent, ok := GetComponent[Parent](cmd, eid); ok {
			if pi, ok := index[parent.Entity]; ok {
				preset.Shapes[i].Parent = pi
			}
		}
	}

	return core.WritePreset(path, preset)
}

// LoadRadiancePreset spawns the shapes stored at path and returns their ids
// in preset order. The config, flags and camera are returned for the caller
// to apply. Nothing is spawned when the preset is invalid.
func LoadRadiancePreset(cmd *Commands, path string) ([]EntityId, *core.Preset, error) {
	preset, err := core.ReadPreset(path)
	if err != nil {
		return nil, nil, err
	}
	shapes := make([]core.Shape, len(preset.Shapes))
	for i, ps := range preset.Shapes {
		if shapes[i], err = ps.Shape(); err != nil {
			return nil, nil, fmt.Errorf("preset %s shape %d: %w", path, i, err)
		}
	}
	if err := validatePresetParents(preset.Shapes); err != nil {
		return nil, nil, fmt.Errorf("preset %s: %w", path, err)
	}

	ids := make([]EntityId, len(preset.Shapes))
	worlds := make([]TransformComponent, len(preset.Shapes))
	for i, ps := range preset.Shapes {
		worlds[i] = TransformComponent{
			Position: ps.Center().Vec3(0),
			Rotation: mgl32.QuatRotate(ps.Rotation, mgl32.Vec3{0, 0, 1}),
			Scale:    mgl32.Vec3{1, 1, 1},
		}
		var body any = OccluderComponent{Shape: shapes[i]}
		if ps.Emitter {
			body = EmitterComponent{Shape: shapes[i], Intensity: max(ps.Intensity, 0), Color: ps.Color}
		}
		ids[i] = cmd.AddEntity(
			worlds[i],
			body,
			VisibilityComponent{Hidden: ps.Hidden},
			NameComponent{Name: ps.Name},
		)
	}

	for i, ps := range preset.Shapes {
		if ps.Parent < 0 {
			continue
		}
		cmd.AddComponents(ids[i],
			Parent{Entity: ids[ps.Parent]},
			relativeTransform(&worlds[ps.Parent], &worlds[i]),
		)
	}
	return ids, preset, nil
}

// validatePresetParents rejects out of range parent indices and cycles.
func validatePresetParents(shapes []core.PresetShape) error {
	for i, ps := range shapes {
		if ps.Parent < -1 || ps.Parent >= len(shapes) {
			return fmt.Errorf("shape %d: parent %d out of range", i, ps.Parent)
		}
	}
	for i := range shapes {
		at := i
		for steps := 0; shapes[at].Parent >= 0; steps++ {
			if steps >= len(shapes) {
				return fmt.Errorf("shape %d: parent cycle", i)
			}
			at = shapes[at].Parent
		}
	}
	return nil
}

// relativeTransform returns the local transform that places world under parent.
func relativeTransform(parent, world *TransformComponent) LocalTransformComponent {
	inv := parent.Rotation.Inverse()
	offset := inv.Rotate(world.Position.Sub(parent.Position))
	return LocalTransformComponent{
		Position: mgl32.Vec3{
			offset.X() / parent.Scale.X(),
			offset.Y() / parent.Scale.Y(),
			offset.Z() / parent.Scale.Z(),
		},
		Rotation: inv.Mul(world.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			world.Scale.X() / parent.Scale.X(),
			world.Scale.Y() / parent.Scale.Y(),
			world.Scale.Z() / parent.Scale.Z(),
		},
	}
}
