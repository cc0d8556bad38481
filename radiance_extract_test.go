package gekko

import (
	"testing"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRadianceApp(t *testing.T, mod RadianceModule) (*App, *Commands) {
	t.Helper()
	app := NewApp()
	app.UseModules(HierarchyModule{}, mod)
	return app, app.Commands()
}

func radianceResources(t *testing.T, cmd *Commands) (*RadianceSettings, *RadianceFrame) {
	t.Helper()
	settings, ok := GetResource[RadianceSettings](cmd)
	require.True(t, ok)
	frame, ok := GetResource[RadianceFrame](cmd)
	require.True(t, ok)
	return settings, frame
}

func at(x, y float32) TransformComponent {
	tr := IdentityTransform()
	tr.Position = mgl32.Vec3{x, y, 0}
	return tr
}

// spawnTestScene covers every extraction rule once.
func spawnTestScene(cmd *Commands) {
	cmd.AddEntity(at(0, 0), EmitterComponent{Shape: core.Circle{Radius: 4}, Intensity: 2, Color: [3]float32{1, 1, 1}})

	wall := at(10, 0)
	wall.Rotation = mgl32.QuatRotate(0.3, mgl32.Vec3{0, 0, 1})
	wall.Scale = mgl32.Vec3{2, 3, 1}
	cmd.AddEntity(wall, OccluderComponent{Shape: core.Rect{HalfExtents: mgl32.Vec2{1, 1}}})

	hidden := cmd.AddEntity(at(20, 0), EmitterComponent{Shape: core.Circle{Radius: 1}, Intensity: 1}, VisibilityComponent{Hidden: true})
	cmd.AddEntity(
		Parent{Entity: hidden},
		LocalTransformComponent{Position: mgl32.Vec3{1, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		TransformComponent{},
		EmitterComponent{Shape: core.Circle{Radius: 1}, Intensity: 1},
	)

	cmd.AddEntity(at(-5, 5),
		EmitterComponent{Shape: core.Circle{Radius: 3}, Intensity: 1, Color: [3]float32{0, 1, 0}},
		OccluderComponent{Shape: core.Rect{HalfExtents: mgl32.Vec2{9, 9}}},
	)
	cmd.AddEntity(at(-8, -8), EmitterComponent{Shape: core.Circle{Radius: 2}, Intensity: -4, Color: [3]float32{1, 0, 0}})
	cmd.AddEntity(at(30, 30))
}

func TestRadianceExtract(t *testing.T) {
	app, cmd := newRadianceApp(t, RadianceModule{Config: core.DefaultConfig()})
	spawnTestScene(cmd)
	app.FlushCommands()
	app.Step()

	_, frame := radianceResources(t, cmd)
	recs := frame.Records

	require.Len(t, recs.Rects, 1)
	wall := recs.Rects[0]
	assert.Equal(t, mgl32.Vec2{2, 3}, wall.HalfExtents)
	assert.Equal(t, mgl32.Vec2{10, 0}, wall.Center)
	assert.InDelta(t, 0.3, wall.Rotation, 1e-5)
	assert.Zero(t, wall.Intensity)
	assert.Equal(t, [3]float32{}, wall.Emit)

	// Archetype creation order: the plain emitters share one archetype.
	require.Len(t, recs.Circles, 3)
	assert.Equal(t, core.CircleRecord{Radius: 4, Emit: [3]float32{1, 1, 1}, Intensity: 2}, recs.Circles[0])
	assert.Equal(t, float32(2), recs.Circles[1].Radius)
	assert.Zero(t, recs.Circles[1].Intensity, "negative intensity clamps to zero")
	assert.Equal(t, float32(3), recs.Circles[2].Radius, "emitter wins over occluder")
	assert.Equal(t, mgl32.Vec2{-5, 5}, recs.Circles[2].Center)
}

func TestRadianceExtractIsDeterministic(t *testing.T) {
	build := func() *RadianceFrame {
		app, cmd := newRadianceApp(t, RadianceModule{Config: core.DefaultConfig()})
		spawnTestScene(cmd)
		app.FlushCommands()
		app.Step()
		_, frame := radianceResources(t, cmd)
		return frame
	}

	a, b := build(), build()
	assert.Equal(t, a.Records.CircleBytes(), b.Records.CircleBytes())
	assert.Equal(t, a.Records.RectBytes(), b.Records.RectBytes())

	// Stepping again rebuilds the same records instead of appending.
	app, cmd := newRadianceApp(t, RadianceModule{Config: core.DefaultConfig()})
	spawnTestScene(cmd)
	app.FlushCommands()
	app.Step()
	_, frame := radianceResources(t, cmd)
	first := frame.Records.CircleBytes()
	app.Step()
	assert.Equal(t, first, frame.Records.CircleBytes())
}

func TestRadianceExtractCulls(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Interval = 1
	cfg.CascadeCount = 1
	app, cmd := newRadianceApp(t, RadianceModule{Config: cfg})

	cmd.AddEntity(at(54, 0), OccluderComponent{Shape: core.Circle{Radius: 5}})
	cmd.AddEntity(at(200, 0), OccluderComponent{Shape: core.Circle{Radius: 5}})
	app.FlushCommands()

	_, frame := radianceResources(t, cmd)
	app.Step()
	assert.Len(t, frame.Records.Circles, 2, "nothing is culled before the size is known")

	frame.Size, _ = core.ComputeSize([2]uint32{100, 100}, 1, 1)
	frame.HasSize = true
	app.Step()
	require.Len(t, frame.Records.Circles, 1)
	assert.Equal(t, mgl32.Vec2{54, 0}, frame.Records.Circles[0].Center)

	frame.Camera.Position = mgl32.Vec2{200, 0}
	app.Step()
	require.Len(t, frame.Records.Circles, 1)
	assert.Equal(t, mgl32.Vec2{200, 0}, frame.Records.Circles[0].Center)
}

func TestScaleShape(t *testing.T) {
	assert.Equal(t, core.Circle{Radius: 2}, scaleShape(core.Circle{Radius: 2}, mgl32.Vec3{}))
	assert.Equal(t, core.Circle{Radius: 6}, scaleShape(core.Circle{Radius: 2}, mgl32.Vec3{-3, 1, 1}))
	assert.Equal(t, core.Rect{HalfExtents: mgl32.Vec2{2, 6}}, scaleShape(core.Rect{HalfExtents: mgl32.Vec2{1, 2}}, mgl32.Vec3{-2, 3, 1}))
}
