package gekko

import (
	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
)

// RadianceModule renders 2D global illumination for every entity with an
// EmitterComponent or OccluderComponent and a TransformComponent.
type RadianceModule struct {
	Config core.Config
	Debug  core.Flags
	// NormalMap is an image path loaded through the AssetServer.
	NormalMap string
	// ShaderDir enables loading and hot reloading WGSL from disk.
	ShaderDir string
	// Preset is a JSON scene spawned at startup.
	Preset string
}

// RadianceSettings is the live configuration. Generation increases on every
// change so systems can detect edits without comparing values.
type RadianceSettings struct {
	Config     core.Config
	Flags      core.Flags
	Generation uint64

	ShaderDir string
	NormalMap AssetId
}

// Set sanitizes and applies cfg, reporting whether anything changed.
func (s *RadianceSettings) Set(cfg core.Config) bool {
	cfg = cfg.Sanitize()
	if cfg == s.Config {
		return false
	}
	s.Config = cfg
	s.Generation++
	return true
}

func (s *RadianceSettings) SetFlags(flags core.Flags) bool {
	if flags == s.Flags {
		return false
	}
	s.Flags = flags
	s.Generation++
	return true
}

// RadianceFrame carries per-frame state between the radiance systems.
type RadianceFrame struct {
	Records core.ShapeRecords
	Camera  *core.Camera2D

	// Size is valid when HasSize is set; SizeGeneration counts real changes.
	Size           core.ComputedSize
	HasSize        bool
	SizeGeneration uint64

	resize resizeTracker
	events []ResizeEvent
}

func (m RadianceModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, "radiance")
	log := app.Logger()

	settings := &RadianceSettings{
		Config:    m.Config.Sanitize(),
		Flags:     m.Debug,
		ShaderDir: m.ShaderDir,
	}
	frame := &RadianceFrame{Camera: core.NewCamera2D()}
	cmd.AddResources(settings, frame)

	if m.Preset != "" {
		if _, preset, err := LoadRadiancePreset(cmd, m.Preset); err != nil {
			log.Errorf("radiance preset: %v", err)
		} else {
			settings.Set(preset.Config)
			settings.SetFlags(settings.Flags | preset.Flags)
			frame.Camera = preset.CameraState()
			log.Infof("radiance preset %s: %d shapes", m.Preset, len(preset.Shapes))
		}
	}

	if m.NormalMap != "" {
		if server, ok := GetResource[AssetServer](cmd); !ok {
			log.Warnf("radiance normal map %s ignored: no AssetServer installed", m.NormalMap)
		} else if id, err := server.LoadTexture(m.NormalMap); err != nil {
			log.Errorf("radiance normal map: %v", err)
		} else {
			settings.NormalMap = id
		}
	}

	app.UseSystem(System(radianceControlSystem).InStage(Update).RunAlways())
	// detection sees this frame's config edits before the targets are rebuilt
	app.UseSystem(System(radianceResizeDetectSystem).InStage(PostUpdate).RunAlways())
	app.UseSystem(System(radianceResizeSystem).InStage(PostUpdate).RunAlways())
	app.UseSystem(System(radianceExtractSystem).InStage(PreRender).RunAlways())
	app.UseSystem(System(radianceRenderSystem).InStage(Render).RunAlways())
	app.UseSystem(System(radianceReloadSystem).InStage(Finale).RunAlways())
}

var radianceDebugKeys = []struct {
	key  int
	flag core.Flags
}{
	{Key1, core.FlagSDF},
	{Key2, core.FlagVoronoi},
	{Key3, core.FlagMerge0},
	{Key4, core.FlagMerge1},
	{Key5, core.FlagProbe},
	{Key6, core.FlagBounce},
	{Key7, core.FlagLight},
	{KeyN, core.FlagApplyNormals},
}

const (
	radiancePanSpeed   = 24
	radianceZoomStep   = 1.1
	radianceScaleStep  = 0.25
	radianceIntervalMu = 1.25
)

// radianceClickFlash is spawned under the cursor on a left click.
var radianceClickFlash = Flash{Radius: 6, Color: [3]float32{1, 0.85, 0.6}, Peak: 4, Duration: 0.75}

// radianceControlSystem maps keys to debug flags, config and camera edits.
// A left click spawns a flash under the cursor.
func radianceControlSystem(cmd *Commands, settings *RadianceSettings, frame *RadianceFrame) {
	input, ok := GetResource[Input](cmd)
	if !ok {
		return
	}
	log := cmd.app.Logger()

	flags := settings.Flags
	for _, k := range radianceDebugKeys {
		if input.JustPressed[k.key] {
			flags = flags.Toggle(k.flag)
		}
	}
	if settings.SetFlags(flags) {
		log.Infof("radiance view: %s (flags %s)", flags.DebugView(), flags)
	}

	cfg := settings.Config
	switch {
	case input.JustPressed[KeyLeftBracket] && cfg.CascadeCount > 1:
		cfg.CascadeCount--
	case input.JustPressed[KeyRightBracket]:
		cfg.CascadeCount++
	case input.JustPressed[KeySemicolon]:
		cfg.Interval /= radianceIntervalMu
	case input.JustPressed[KeyApostrophe]:
		cfg.Interval *= radianceIntervalMu
	case input.JustPressed[KeyPageUp]:
		cfg.ScaleFactor += radianceScaleStep
	case input.JustPressed[KeyPageDown]:
		cfg.ScaleFactor -= radianceScaleStep
	case input.JustPressed[KeyP]:
		cfg.ProbeBase = cfg.ProbeBase%4 + 1
	}
	if settings.Set(cfg) {
		log.Infof("radiance config: cascades=%d interval=%.2f scale=%.2f probe=%d",
			settings.Config.CascadeCount, settings.Config.Interval, settings.Config.ScaleFactor, settings.Config.ProbeBase)
	}

	cam := frame.Camera
	if cam.Zoom <= 0 {
		cam.Zoom = 1
	}
	if input.Pressed[KeyEqual] || input.Pressed[KeyKPPlus] {
		cam.Zoom *= radianceZoomStep
	}
	if input.Pressed[KeyMinus] || input.Pressed[KeyKPMinus] {
		cam.Zoom /= radianceZoomStep
	}
	var pan mgl32.Vec2
	if input.Pressed[KeyLeft] {
		pan[0]--
	}
	if input.Pressed[KeyRight] {
		pan[0]++
	}
	if input.Pressed[KeyDown] {
		pan[1]--
	}
	if input.Pressed[KeyUp] {
		pan[1]++
	}
	cam.Position = cam.Position.Add(pan.Mul(radiancePanSpeed / cam.Zoom))

	if input.JustPressed[MouseButtonLeft] && frame.HasSize && input.WindowWidth > 0 && input.WindowHeight > 0 {
		uv := mgl32.Vec2{float32(input.MouseX) / float32(input.WindowWidth), float32(input.MouseY) / float32(input.WindowHeight)}
		pos := cam.WorldAt(uv, frame.Size.Native[0], frame.Size.Native[1])
		SpawnFlash(cmd, pos, radianceClickFlash)
		log.Debugf("radiance flash at %.1f,%.1f", pos.X(), pos.Y())
	}
}
