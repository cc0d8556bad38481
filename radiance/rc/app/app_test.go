package app

import (
	"testing"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *App {
	return NewApp(nil, Options{Config: core.DefaultConfig()})
}

func TestHandleKey_DebugToggles(t *testing.T) {
	a := newTestApp()

	assert.True(t, a.HandleKey(glfw.Key2, glfw.Press))
	assert.Equal(t, core.ViewVoronoi, a.Flags.DebugView())

	// SDF outranks Voronoi while both are set
	a.HandleKey(glfw.Key1, glfw.Press)
	assert.Equal(t, core.ViewSDF, a.Flags.DebugView())

	a.HandleKey(glfw.Key1, glfw.Press)
	a.HandleKey(glfw.Key2, glfw.Press)
	assert.Equal(t, core.ViewLit, a.Flags.DebugView())

	// holding a toggle key does not flicker
	a.HandleKey(glfw.KeyN, glfw.Press)
	a.HandleKey(glfw.KeyN, glfw.Repeat)
	assert.True(t, a.Flags.Has(core.FlagApplyNormals))

	assert.False(t, a.HandleKey(glfw.Key1, glfw.Release))
	assert.False(t, a.HandleKey(glfw.KeyQ, glfw.Press))
}

func TestHandleKey_SettingsClampAndMarkSizing(t *testing.T) {
	a := newTestApp()

	a.HandleKey(glfw.KeySemicolon, glfw.Press)
	assert.Less(t, a.Settings.Interval, core.DefaultConfig().Interval)
	assert.False(t, a.settingsDirty, "interval does not change target sizes")

	for i := 0; i < 20; i++ {
		a.HandleKey(glfw.KeyRightBracket, glfw.Repeat)
	}
	assert.Equal(t, uint32(core.MaxCascadeCount), a.Settings.CascadeCount)
	assert.True(t, a.settingsDirty)

	a.settingsDirty = false
	for i := 0; i < 20; i++ {
		a.HandleKey(glfw.KeyLeftBracket, glfw.Repeat)
	}
	assert.Equal(t, uint32(1), a.Settings.CascadeCount)

	for i := 0; i < 10; i++ {
		a.HandleKey(glfw.KeyPageDown, glfw.Repeat)
	}
	assert.Equal(t, float32(core.MinScaleFactor), a.Settings.ScaleFactor)

	a.HandleKey(glfw.KeyP, glfw.Press)
	assert.Equal(t, uint32(2), a.Settings.ProbeBase)
}

func TestHandleKey_Camera(t *testing.T) {
	a := newTestApp()

	a.HandleKey(glfw.KeyRight, glfw.Press)
	assert.Equal(t, mgl32.Vec2{panSpeed, 0}, a.Camera.Position)

	a.HandleKey(glfw.KeyEqual, glfw.Press)
	assert.InDelta(t, zoomStep, a.Camera.Zoom, 1e-6)

	// panning is in screen units, so it shrinks as the camera zooms in
	a.HandleKey(glfw.KeyUp, glfw.Press)
	assert.InDelta(t, panSpeed/zoomStep, a.Camera.Position.Y(), 1e-4)

	assert.True(t, a.HandleKey(glfw.KeyF12, glfw.Press))
	assert.False(t, a.capturePending, "no readback without a device")
}

func TestScreenToWorld(t *testing.T) {
	cam := core.NewCamera2D()
	cam.Position = mgl32.Vec2{100, 50}

	center := ScreenToWorld(cam, 400, 300, 800, 600, 800, 600)
	assert.InDelta(t, 100, center.X(), 1e-4)
	assert.InDelta(t, 50, center.Y(), 1e-4)

	// window coordinates grow downwards
	topLeft := ScreenToWorld(cam, 0, 0, 800, 600, 800, 600)
	assert.InDelta(t, -300, topLeft.X(), 1e-4)
	assert.InDelta(t, 350, topLeft.Y(), 1e-4)

	// a HiDPI framebuffer twice the window size shows twice the world
	hidpi := ScreenToWorld(cam, 0, 0, 800, 600, 1600, 1200)
	assert.InDelta(t, -700, hidpi.X(), 1e-4)

	assert.Equal(t, cam.Position, ScreenToWorld(cam, 1, 1, 0, 0, 800, 600))
}

func TestScene_RecordsAndCulling(t *testing.T) {
	s := DefaultScene()
	cam := core.NewCamera2D()

	var all core.ShapeRecords
	s.Records(&all, cam, 1280, 720, 1000)
	require.Equal(t, len(s.Shapes), all.Len())

	// occluders carry no emission
	for _, r := range all.Rects {
		if r.HalfExtents == (mgl32.Vec2{8, 60}) {
			assert.Equal(t, float32(0), r.Intensity)
		}
	}

	cam.Position = mgl32.Vec2{100000, 0}
	var none core.ShapeRecords
	s.Records(&none, cam, 1280, 720, 10)
	assert.Equal(t, 0, none.Len())
}

func TestScene_UpdateAndCursor(t *testing.T) {
	s := DefaultScene()
	before := s.Shapes[4].Rotation

	s.Update(2)
	assert.InDelta(t, before+2*s.Shapes[4].Spin, s.Shapes[4].Rotation, 1e-6)

	s.MoveCursor(mgl32.Vec2{7, 8})
	assert.Equal(t, mgl32.Vec2{7, 8}, s.Shapes[0].Position)

	s.Cursor = -1
	s.MoveCursor(mgl32.Vec2{1, 1})
	assert.Equal(t, mgl32.Vec2{7, 8}, s.Shapes[0].Position)
}

func TestSceneFromPreset(t *testing.T) {
	p := &core.Preset{Shapes: []core.PresetShape{
		{Kind: "circle", Radius: 3, Emitter: true, Color: [3]float32{1, 0, 0}, Intensity: 1, Parent: -1},
		{Kind: "rect", HalfExtents: [2]float32{1, 1}, Rotation: 0.5, Parent: -1},
		{Kind: "circle", Radius: 1, Hidden: true, Parent: -1},
	}}

	s, err := SceneFromPreset(p)
	require.NoError(t, err)
	require.Len(t, s.Shapes, 2)
	assert.Equal(t, -1, s.Cursor)
	assert.Equal(t, float32(0.5), s.Shapes[1].Rotation)

	p.Shapes = append(p.Shapes, core.PresetShape{Kind: "hexagon"})
	_, err = SceneFromPreset(p)
	assert.Error(t, err)
}
