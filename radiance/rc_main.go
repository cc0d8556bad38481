package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/gekko3d/gekko2d"
	"github.com/gekko3d/gekko2d/radiance/rc/app"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/gekko3d/gekko2d/radiance/rc/preview"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	def := core.DefaultConfig()
	scale := flag.Float64("scale", float64(def.ScaleFactor), "native:scaled resolution ratio")
	cascades := flag.Uint("cascades", uint(def.CascadeCount), "number of cascades (1-8)")
	interval := flag.Float64("interval", float64(def.Interval), "cascade 0 ray length in world units")
	probe := flag.Uint("probe", uint(def.ProbeBase), "probe base (1-16)")
	debug := flag.String("debug", "", "comma separated debug flags: sdf,voronoi,merge0,merge1,probe,bounce,light,normals")
	shaderDir := flag.String("shaders", "", "directory of WGSL overrides, hot reloaded")
	presetPath := flag.String("preset", "", "JSON scene preset")
	normalPath := flag.String("normal", "", "normal map image (png, tga, webp)")
	captureDir := flag.String("capture-dir", ".", "directory for F12 captures")
	previewPath := flag.String("preview", "", "render a CPU preview to this WebP file and exit")
	previewMode := flag.String("preview-mode", "sdf", "CPU preview mode: sdf or voronoi")
	useECS := flag.Bool("ecs", false, "run through the gekko ECS host")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log := gekko.NewDefaultLogger("radiance", *verbose)

	cfg := core.Config{
		Interval:      float32(*interval),
		ScaleFactor:   float32(*scale),
		CascadeCount:  uint32(*cascades),
		ProbeBase:     uint32(*probe),
		EdgeHighlight: def.EdgeHighlight,
		LightZ:        def.LightZ,
	}.Sanitize()

	flags, unknown := core.ParseFlags(*debug)
	if len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "unknown debug flags: %s\n", strings.Join(unknown, ","))
		os.Exit(2)
	}

	if *previewPath != "" {
		if err := writePreview(*previewPath, *previewMode, *presetPath); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		return
	}

	if *useECS {
		gekko.NewApp().
			UseModules(
				gekko.LoggingModule{Prefix: "radiance", Debug: *verbose},
				gekko.TimeModule{},
				gekko.LifecycleModule{},
				gekko.NewPlatformWindow(1280, 720, "gekko2d radiance"),
				gekko.InputModule{},
				gekko.HierarchyModule{},
				gekko.AssetServerModule{},
				gekko.RadianceModule{
					Config:    cfg,
					Debug:     flags,
					NormalMap: *normalPath,
					ShaderDir: *shaderDir,
					Preset:    *presetPath,
				},
			).
			Run()
		return
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1280, 720, "gekko2d radiance", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application := app.NewApp(window, app.Options{
		Config:      cfg,
		Flags:       flags,
		ShaderDir:   *shaderDir,
		PresetPath:  *presetPath,
		NormalPath:  *normalPath,
		CaptureDir:  *captureDir,
		CaptureRole: core.RoleMipmap,
		Log:         log,
	})
	if err := application.Init(); err != nil {
		log.Errorf("init: %v", err)
		os.Exit(1)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		application.MouseX = xpos
		application.MouseY = ypos
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
			return
		}
		application.HandleKey(key, action)
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}

func writePreview(path, mode, presetPath string) error {
	m := preview.ModeSDF
	switch mode {
	case "sdf":
	case "voronoi":
		m = preview.ModeVoronoi
	default:
		return fmt.Errorf("unknown preview mode %q", mode)
	}

	scene := app.DefaultScene()
	cam := core.NewCamera2D()
	if presetPath != "" {
		p, err := core.ReadPreset(presetPath)
		if err != nil {
			return err
		}
		if scene, err = app.SceneFromPreset(p); err != nil {
			return err
		}
		cam = p.CameraState()
	}

	const w, h = 1280, 720
	var records core.ShapeRecords
	scene.Records(&records, cam, w, h, 0)
	img := preview.NewRenderer(0).Render(&records, cam, w, h, m)
	return preview.WriteWebP(path, img)
}
