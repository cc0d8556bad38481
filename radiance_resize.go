package gekko

import (
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

type ResizeReason int

const (
	ResizeStartup ResizeReason = iota
	ResizeWindow
	ResizeConfig
)

func (r ResizeReason) String() string {
	switch r {
	case ResizeStartup:
		return "startup"
	case ResizeWindow:
		return "window"
	case ResizeConfig:
		return "config"
	default:
		return "unknown"
	}
}

// ResizeEvent asks the radiance targets to be rebuilt for a viewport.
type ResizeEvent struct {
	Native [2]uint32
	Reason ResizeReason
}

// resizeTracker remembers what the targets were last sized for.
type resizeTracker struct {
	started bool
	native  [2]uint32
	config  core.Config
}

// observe returns the event implied by the current viewport and config.
func (t *resizeTracker) observe(native [2]uint32, cfg core.Config) (ResizeEvent, bool) {
	var reason ResizeReason
	switch {
	case !t.started:
		reason = ResizeStartup
	case native != t.native:
		reason = ResizeWindow
	case !cfg.SizingEqual(t.config):
		reason = ResizeConfig
	default:
		return ResizeEvent{}, false
	}
	t.started = true
	t.native = native
	t.config = cfg
	return ResizeEvent{Native: native, Reason: reason}, true
}

// SendResize queues an event for the resize system.
func (f *RadianceFrame) SendResize(ev ResizeEvent) {
	f.events = append(f.events, ev)
}

func (f *RadianceFrame) drainResize() []ResizeEvent {
	events := f.events
	f.events = nil
	return events
}

// radianceResizeDetectSystem fires ResizeEvents. Without a window it does nothing.
func radianceResizeDetectSystem(cmd *Commands, settings *RadianceSettings, frame *RadianceFrame) {
	ws, ok := GetResource[WindowState](cmd)
	if !ok {
		return
	}
	if ev, ok := frame.resize.observe(ws.FramebufferSize(), settings.Config); ok {
		frame.SendResize(ev)
	}
}

// radianceResizeSystem applies the newest queued event. Only the last event
// matters since each carries the full viewport size.
func radianceResizeSystem(cmd *Commands, settings *RadianceSettings, frame *RadianceFrame) {
	events := frame.drainResize()
	if len(events) == 0 {
		return
	}
	ev := events[len(events)-1]
	log := cmd.app.Logger()

	cfg := settings.Config
	size, ok := core.ComputeSizeWithProbe(ev.Native, cfg.ScaleFactor, cfg.CascadeCount, cfg.ProbeBase)
	if !ok {
		log.Debugf("radiance resize (%s) skipped: viewport %dx%d has no area", ev.Reason, ev.Native[0], ev.Native[1])
		return
	}
	if !frame.HasSize || size != frame.Size {
		frame.Size = size
		frame.HasSize = true
		frame.SizeGeneration++
		log.Debugf("radiance resize (%s): native %v scaled %v", ev.Reason, size.Native, size.Scaled)
	}

	renderer, ok := ensureRadianceRenderer(cmd, settings)
	if !ok {
		return
	}
	if err := renderer.resize(size, cfg, cmd); err != nil {
		log.Errorf("radiance resize to %dx%d: %v", ev.Native[0], ev.Native[1], err)
	}
}
