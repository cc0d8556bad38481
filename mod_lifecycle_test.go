package gekko

import (
	"math"
	"testing"
	"time"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeClock advances by step on every read.
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimeSystem(t *testing.T) {
	start := time.Unix(1000, 0)
	res := &Time{Time: start, now: fakeClock(start, 250*time.Millisecond)}

	timeSystem(res)
	timeSystem(res)

	if res.Frame != 2 {
		t.Errorf("expected frame 2, got %d", res.Frame)
	}
	if res.Dt != 250*time.Millisecond {
		t.Errorf("expected dt 250ms, got %v", res.Dt)
	}
	if res.Seconds() != 0.25 {
		t.Errorf("expected 0.25s, got %v", res.Seconds())
	}
	if !res.Time.Equal(start.Add(500 * time.Millisecond)) {
		t.Errorf("unexpected time %v", res.Time)
	}
}

func TestLifetimeExpires(t *testing.T) {
	app := NewApp()
	app.UseModules(TimeModule{}, LifecycleModule{})
	cmd := app.Commands()

	clock, _ := GetResource[Time](cmd)
	clock.now = fakeClock(clock.Time, 400*time.Millisecond)

	short := cmd.AddEntity(LifetimeComponent{TimeLeft: 0.5})
	long := cmd.AddEntity(LifetimeComponent{TimeLeft: 2})
	app.FlushCommands()

	app.Step()
	if !cmd.HasEntity(short) {
		t.Fatalf("entity removed too early")
	}
	app.Step()
	if cmd.HasEntity(short) {
		t.Errorf("entity should be removed after its lifetime")
	}
	if !cmd.HasEntity(long) {
		t.Errorf("longer lifetime should survive")
	}
	lt, _ := GetComponent[LifetimeComponent](cmd, long)
	if lt.TimeLeft > 1.21 || lt.TimeLeft < 1.19 {
		t.Errorf("expected about 1.2s left, got %v", lt.TimeLeft)
	}
}

func TestFlashIntensity(t *testing.T) {
	f := FlashComponent{Peak: 4, Duration: 2}
	cases := []struct {
		left, want float32
	}{
		{2, 4}, {1, 2}, {0, 0}, {-1, 0}, {3, 4},
	}
	for _, c := range cases {
		if got := f.Intensity(c.left); got != c.want {
			t.Errorf("Intensity(%v) = %v, want %v", c.left, got, c.want)
		}
	}
	if got := (FlashComponent{Peak: 4}).Intensity(1); got != 0 {
		t.Errorf("zero duration should be dark, got %v", got)
	}
}

func TestFlashFadesThenLeavesRecords(t *testing.T) {
	app := NewApp()
	app.UseModules(TimeModule{}, LifecycleModule{}, HierarchyModule{}, RadianceModule{Config: core.DefaultConfig()})
	cmd := app.Commands()

	clock, _ := GetResource[Time](cmd)
	clock.now = fakeClock(clock.Time, 250*time.Millisecond)
	frame, _ := GetResource[RadianceFrame](cmd)

	eid := SpawnFlash(cmd, mgl32.Vec2{5, 0}, Flash{Radius: 4, Color: [3]float32{1, 1, 1}, Peak: 2, Duration: 0.6})
	app.FlushCommands()

	// 0.35s left of 0.6s, then 0.1s
	for _, want := range []float32{2 * 0.35 / 0.6, 2 * 0.1 / 0.6} {
		app.Step()
		if len(frame.Records.Circles) != 1 {
			t.Fatalf("expected the flash in the records, got %d circles", len(frame.Records.Circles))
		}
		c := frame.Records.Circles[0]
		if math.Abs(float64(c.Intensity-want)) > 1e-4 {
			t.Errorf("expected intensity %v, got %v", want, c.Intensity)
		}
		if c.Center != (mgl32.Vec2{5, 0}) || c.Radius != 4 {
			t.Errorf("unexpected flash record %+v", c)
		}
	}

	app.Step()
	if cmd.HasEntity(eid) {
		t.Errorf("flash should be removed once its lifetime ran out")
	}
	if len(frame.Records.Circles) != 0 {
		t.Errorf("expired flash still extracted: %+v", frame.Records.Circles)
	}
}
