package gekko

import (
	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
)

// LifetimeComponent despawns its entity once TimeLeft seconds have elapsed.
type LifetimeComponent struct {
	TimeLeft float32
}

// FlashComponent drives the EmitterComponent on the same entity from Peak
// down to zero as the entity's LifetimeComponent runs out over Duration.
type FlashComponent struct {
	Peak     float32
	Duration float32
}

// Intensity is the flash strength with left seconds remaining.
func (f FlashComponent) Intensity(left float32) float32 {
	if f.Duration <= 0 {
		return 0
	}
	return f.Peak * min(max(left/f.Duration, 0), 1)
}

// Flash describes a short lived circular light.
type Flash struct {
	Radius   float32
	Color    [3]float32
	Peak     float32
	Duration float32
}

// SpawnFlash adds a fading emitter at pos. It removes itself once faded
// when LifecycleModule is installed.
func SpawnFlash(cmd *Commands, pos mgl32.Vec2, f Flash) EntityId {
	tr := IdentityTransform()
	tr.Position = mgl32.Vec3{pos.X(), pos.Y(), 0}
	return cmd.AddEntity(
		tr,
		EmitterComponent{Shape: core.Circle{Radius: f.Radius}, Intensity: f.Peak, Color: f.Color},
		FlashComponent{Peak: f.Peak, Duration: f.Duration},
		LifetimeComponent{TimeLeft: f.Duration},
	)
}

// LifecycleModule ages LifetimeComponents and fades flashes. Both run in
// PostUpdate so removals are flushed before the radiance extraction.
type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(lifetimeSystem).InStage(PostUpdate).RunAlways())
	app.UseSystem(System(flashFadeSystem).InStage(PostUpdate).RunAlways())
}

func lifetimeSystem(clock *Time, cmd *Commands) {
	dt := clock.Seconds()
	if dt <= 0 {
		return
	}
	expired := 0
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= dt
		if lt.TimeLeft <= 0 {
			cmd.RemoveEntity(eid)
			expired++
		}
		return true
	})
	if expired > 0 {
		cmd.app.Logger().Debugf("lifecycle: %d entities expired", expired)
	}
}

func flashFadeSystem(cmd *Commands) {
	MakeQuery3[FlashComponent, LifetimeComponent, EmitterComponent](cmd).Map(func(eid EntityId, f *FlashComponent, lt *LifetimeComponent, em *EmitterComponent) bool {
		em.Intensity = f.Intensity(lt.TimeLeft)
		return true
	})
}
