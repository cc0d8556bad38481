package app

import (
	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// debugKeys toggles composite flags. The number row follows debug precedence.
var debugKeys = map[glfw.Key]core.Flags{
	glfw.Key1: core.FlagSDF,
	glfw.Key2: core.FlagVoronoi,
	glfw.Key3: core.FlagMerge0,
	glfw.Key4: core.FlagMerge1,
	glfw.Key5: core.FlagProbe,
	glfw.Key6: core.FlagBounce,
	glfw.Key7: core.FlagLight,
	glfw.KeyN: core.FlagApplyNormals,
}

const (
	panSpeed   = 24
	zoomStep   = 1.1
	scaleStep  = 0.25
	intervalMu = 1.25
)

// HandleKey applies one key event to the settings, camera or capture state.
// It returns false for keys the app does not use.
func (a *App) HandleKey(key glfw.Key, action glfw.Action) bool {
	if action != glfw.Press && action != glfw.Repeat {
		return false
	}
	if flag, ok := debugKeys[key]; ok {
		if action == glfw.Press {
			a.Flags = a.Flags.Toggle(flag)
			a.Log.Infof("radiance view: %s (flags %s)", a.Flags.DebugView(), a.Flags)
		}
		return true
	}

	cfg := a.Settings
	switch key {
	case glfw.KeyLeftBracket:
		if cfg.CascadeCount > 1 {
			cfg.CascadeCount--
		}
	case glfw.KeyRightBracket:
		cfg.CascadeCount++
	case glfw.KeySemicolon:
		cfg.Interval /= intervalMu
	case glfw.KeyApostrophe:
		cfg.Interval *= intervalMu
	case glfw.KeyPageUp:
		cfg.ScaleFactor += scaleStep
	case glfw.KeyPageDown:
		cfg.ScaleFactor -= scaleStep
	case glfw.KeyP:
		cfg.ProbeBase = cfg.ProbeBase%4 + 1
	case glfw.KeyEqual, glfw.KeyKPAdd:
		a.Camera.Zoom = a.zoom() * zoomStep
		return true
	case glfw.KeyMinus, glfw.KeyKPSubtract:
		a.Camera.Zoom = a.zoom() / zoomStep
		return true
	case glfw.KeyLeft:
		a.pan(-1, 0)
		return true
	case glfw.KeyRight:
		a.pan(1, 0)
		return true
	case glfw.KeyUp:
		a.pan(0, 1)
		return true
	case glfw.KeyDown:
		a.pan(0, -1)
		return true
	case glfw.KeyF12:
		a.RequestCapture()
		return true
	default:
		return false
	}

	a.applySettings(cfg)
	return true
}

func (a *App) applySettings(cfg core.Config) {
	cfg = cfg.Sanitize()
	if cfg == a.Settings {
		return
	}
	if !cfg.SizingEqual(a.Settings) {
		a.settingsDirty = true
	}
	a.Settings = cfg
	a.Log.Infof("radiance config: cascades=%d interval=%.2f scale=%.2f probe=%d",
		cfg.CascadeCount, cfg.Interval, cfg.ScaleFactor, cfg.ProbeBase)
}

func (a *App) zoom() float32 {
	if a.Camera.Zoom <= 0 {
		return 1
	}
	return a.Camera.Zoom
}

func (a *App) pan(dx, dy float32) {
	step := panSpeed / a.zoom()
	a.Camera.Position = a.Camera.Position.Add(mgl32.Vec2{dx * step, dy * step})
}
