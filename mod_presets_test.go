package gekko

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
)

func TestPresetSerialization(t *testing.T) {
	app := NewApp()
	app.UseModules(HierarchyModule{})
	cmd := app.Commands()

	cfg := core.DefaultConfig()
	cfg.CascadeCount = 4
	cmd.AddResources(
		&RadianceSettings{Config: cfg, Flags: core.FlagSDF | core.FlagApplyNormals},
		&RadianceFrame{Camera: &core.Camera2D{Position: mgl32.Vec2{12, -4}, Zoom: 2}},
	)

	lamp := cmd.AddEntity(
		TransformComponent{
			Position: mgl32.Vec3{100, 50, 0},
			Rotation: mgl32.QuatRotate(0.5, mgl32.Vec3{0, 0, 1}),
			Scale:    mgl32.Vec3{2, 2, 1},
		},
		EmitterComponent{Shape: core.Circle{Radius: 10}, Intensity: 3, Color: [3]float32{1, 0.5, 0.25}},
		NameComponent{Name: "lamp"},
	)
	cmd.AddEntity(
		Parent{Entity: lamp},
		LocalTransformComponent{Position: mgl32.Vec3{20, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		TransformComponent{},
		OccluderComponent{Shape: core.Rect{HalfExtents: mgl32.Vec2{4, 8}}},
		VisibilityComponent{Hidden: true},
	)
	// No shape: not part of the preset.
	cmd.AddEntity(TransformComponent{Position: mgl32.Vec3{1, 1, 0}})
	app.FlushCommands()
	TransformHierarchySystem(cmd)

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := SaveRadiancePreset(cmd, path); err != nil {
		t.Fatalf("SaveRadiancePreset: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("preset not written: %v", err)
	}

	loaded := NewApp()
	loaded.UseModules(HierarchyModule{})
	lcmd := loaded.Commands()
	ids, preset, err := LoadRadiancePreset(lcmd, path)
	if err != nil {
		t.Fatalf("LoadRadiancePreset: %v", err)
	}
	loaded.FlushCommands()
	TransformHierarchySystem(lcmd)

	if len(ids) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(ids))
	}
	if preset.Config.CascadeCount != 4 {
		t.Errorf("cascade count: expected 4, got %d", preset.Config.CascadeCount)
	}
	if preset.Flags != core.FlagSDF|core.FlagApplyNormals {
		t.Errorf("flags: got %s", preset.Flags)
	}
	if cam := preset.CameraState(); cam.Position != (mgl32.Vec2{12, -4}) || cam.Zoom != 2 {
		t.Errorf("camera: got %+v", *cam)
	}

	em, ok := GetComponent[EmitterComponent](lcmd, ids[0])
	if !ok {
		t.Fatalf("first shape should be an emitter")
	}
	if em.Shape != (core.Circle{Radius: 20}) {
		t.Errorf("emitter shape should carry the saved scale, got %#v", em.Shape)
	}
	if em.Intensity != 3 || em.Color != [3]float32{1, 0.5, 0.25} {
		t.Errorf("emitter light: got %+v", *em)
	}
	if name, _ := GetComponent[NameComponent](lcmd, ids[0]); name.Name != "lamp" {
		t.Errorf("name: got %q", name.Name)
	}

	if _, ok := GetComponent[OccluderComponent](lcmd, ids[1]); !ok {
		t.Errorf("second shape should be an occluder")
	}
	parent, ok := GetComponent[Parent](lcmd, ids[1])
	if !ok || parent.Entity != ids[0] {
		t.Errorf("occluder should be parented to the lamp")
	}
	if vis, _ := GetComponent[VisibilityComponent](lcmd, ids[1]); !vis.Hidden {
		t.Errorf("occluder should stay hidden")
	}

	// Lamp at (100,50) rotated 0.5 rad, child offset (20,0) scaled by 2.
	want := mgl32.Vec3{100, 50, 0}.Add(mgl32.QuatRotate(0.5, mgl32.Vec3{0, 0, 1}).Rotate(mgl32.Vec3{40, 0, 0}))
	child, _ := GetComponent[TransformComponent](lcmd, ids[1])
	if child.Position.Sub(want).Len() > 1e-3 {
		t.Errorf("child world position: expected %v, got %v", want, child.Position)
	}
}

func TestLoadPresetRejectsBadParents(t *testing.T) {
	cases := map[string][]core.PresetShape{
		"out of range": {
			{Kind: "circle", Radius: 1, Parent: 3},
		},
		"cycle": {
			{Kind: "circle", Radius: 1, Parent: 1},
			{Kind: "circle", Radius: 1, Parent: 0},
		},
		"self": {
			{Kind: "rect", HalfExtents: [2]float32{1, 1}, Parent: 0},
		},
		"unknown kind": {
			{Kind: "triangle", Parent: -1},
		},
	}
	for name, shapes := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := core.WritePreset(path, &core.Preset{Config: core.DefaultConfig(), Shapes: shapes}); err != nil {
				t.Fatal(err)
			}
			app := NewApp()
			cmd := app.Commands()
			if _, _, err := LoadRadiancePreset(cmd, path); err == nil {
				t.Errorf("expected an error")
			}
			app.FlushCommands()
			spawned := 0
			MakeQuery1[TransformComponent](cmd).Map(func(EntityId, *TransformComponent) bool {
				spawned++
				return true
			})
			if spawned != 0 {
				t.Errorf("nothing should be spawned, got %d entities", spawned)
			}
		})
	}
}

func TestLoadPresetMissingFile(t *testing.T) {
	app := NewApp()
	if _, _, err := LoadRadiancePreset(app.Commands(), filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected an error for a missing preset")
	}
}
