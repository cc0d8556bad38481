package app

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/gekko3d/gekko2d/radiance/rc/gpu"
	"github.com/gekko3d/gekko2d/radiance/rc/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Options configures a standalone radiance window.
type Options struct {
	Config core.Config
	Flags  core.Flags
	// ShaderDir enables loading and hot reloading WGSL from disk.
	ShaderDir  string
	PresetPath string
	NormalPath string
	CaptureDir string
	// CaptureRole is the target written by the capture key.
	CaptureRole core.Role
	Log         core.Logger
}

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Registry *gpu.Registry
	Targets  *gpu.TargetManager
	Node     *gpu.Node
	Readback *gpu.Readback
	Watcher  *shaders.Watcher
	Profiler *Profiler
	Log      core.Logger

	Scene    *Scene
	Camera   *core.Camera2D
	Settings core.Config
	Flags    core.Flags
	Records  core.ShapeRecords

	Options Options

	normalSource image.Image
	normal       gpu.Texture

	settingsDirty  bool
	captureIndex   int
	capturePending bool

	MouseX, MouseY float64
	LastTime       float64
	LastRenderTime float64

	FrameCount int
	FPS        float64
	FPSTime    float64
}

func NewApp(window *glfw.Window, opts Options) *App {
	return &App{
		Window:   window,
		Camera:   core.NewCamera2D(),
		Scene:    DefaultScene(),
		Settings: opts.Config.Sanitize(),
		Flags:    opts.Flags,
		Profiler: NewProfiler(),
		Log:      core.OrNop(opts.Log),
		Options:  opts,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", gpu.ErrNoAdapter, err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	sources := shaders.Embedded()
	if a.Options.ShaderDir != "" {
		sources, err = shaders.Load(a.Options.ShaderDir)
		if err != nil {
			return err
		}
		a.Watcher = shaders.NewWatcher(a.Options.ShaderDir, shaders.DefaultPollInterval)
	}

	a.Registry, err = gpu.NewRegistry(a.Device, a.Config.Format, sources, a.Log)
	if err != nil {
		return err
	}
	a.Targets = gpu.NewTargetManager(a.Device, a.Log)
	a.Node = gpu.NewNode(a.Device, a.Registry, a.Targets, a.Log)
	a.Readback = gpu.NewReadback(a.Device, a.Options.CaptureRole)
	a.Readback.Log = a.Log

	if a.Options.PresetPath != "" {
		preset, err := core.ReadPreset(a.Options.PresetPath)
		if err != nil {
			return err
		}
		if a.Scene, err = SceneFromPreset(preset); err != nil {
			return fmt.Errorf("preset %s: %w", a.Options.PresetPath, err)
		}
		a.Settings = preset.Config
		a.Flags |= preset.Flags
		a.Camera = preset.CameraState()
	}

	if a.Options.NormalPath != "" {
		a.normalSource, err = gpu.DecodeImageFile(a.Options.NormalPath)
		if err != nil {
			return err
		}
	}

	a.Resize(width, height)
	a.LastTime = glfw.GetTime()
	return nil
}

// Resize reconfigures the surface and reallocates the radiance targets.
// Minimized windows report zero sizes and are ignored.
func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)

	if err := a.resizeTargets(); err != nil {
		a.Log.Errorf("radiance resize to %dx%d: %v", w, h, err)
	}
	if err := a.uploadNormal(); err != nil {
		a.Log.Errorf("radiance normal map: %v", err)
	}
}

func (a *App) resizeTargets() error {
	size, ok := core.ComputeSizeWithProbe(
		[2]uint32{a.Config.Width, a.Config.Height},
		a.Settings.ScaleFactor, a.Settings.CascadeCount, a.Settings.ProbeBase,
	)
	if !ok {
		return gpu.ErrZeroSize
	}
	return a.Targets.Resize(size, a.Settings)
}

// uploadNormal rescales the normal map to the surface and replaces the texture.
func (a *App) uploadNormal() error {
	if a.normalSource == nil {
		return nil
	}
	img := gpu.ResizeNRGBA(a.normalSource, int(a.Config.Width), int(a.Config.Height))
	tex, err := gpu.UploadImage(a.Device, "RadianceNormalMap", img)
	if err != nil {
		return err
	}
	a.normal.Release()
	a.normal = tex
	return nil
}

func (a *App) Update() {
	now := glfw.GetTime()
	dt := float32(now - a.LastTime)
	a.LastTime = now

	a.Profiler.BeginScope("update")
	defer a.Profiler.EndScope("update")

	if a.settingsDirty {
		a.settingsDirty = false
		if err := a.resizeTargets(); err != nil {
			a.Log.Errorf("radiance settings: %v", err)
		}
	}

	w, h := a.Window.GetSize()
	a.Scene.MoveCursor(ScreenToWorld(a.Camera, a.MouseX, a.MouseY, w, h, a.Config.Width, a.Config.Height))
	a.Scene.Update(dt)
	a.Scene.Records(&a.Records, a.Camera, a.Config.Width, a.Config.Height, a.Settings.RayReach())
	a.Profiler.SetCount("circles", len(a.Records.Circles))
	a.Profiler.SetCount("rects", len(a.Records.Rects))

	a.pollShaders()
	a.pollCapture()
}

func (a *App) pollShaders() {
	if a.Watcher == nil {
		return
	}
	changes, err := a.Watcher.Poll()
	if err != nil {
		a.Log.Warnf("shader watcher: %v", err)
		return
	}
	for _, c := range changes {
		_ = a.Registry.Reload(c.Kind, c.Code)
	}
}

func (a *App) pollCapture() {
	if !a.capturePending {
		return
	}
	if a.Readback.Err() != nil {
		// already logged by the readback
		a.capturePending = false
		return
	}
	if !a.Readback.Poll(false) {
		return
	}
	a.capturePending = false

	dir := a.Options.CaptureDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("radiance_%s_%03d.webp", a.Readback.Role, a.captureIndex))
	a.captureIndex++
	if err := a.Readback.Capture(path); err != nil {
		a.Log.Errorf("capture: %v", err)
		return
	}
	a.Log.Infof("captured %s", path)
}

// RequestCapture arms the readback for the next rendered frame.
func (a *App) RequestCapture() {
	if a.Readback == nil {
		return
	}
	a.Readback.Request()
	a.capturePending = true
}

func (a *App) Render() {
	a.Profiler.BeginScope("render")
	defer a.Profiler.EndScope("render")

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Log.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Log.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	ran, err := a.Node.Run(gpu.Frame{
		Config:  a.Settings,
		Flags:   a.Flags,
		Camera:  a.Camera,
		Records: &a.Records,
		Dest:    view,
		Normal:  a.normal.View,
	})
	if err != nil {
		a.Log.Errorf("radiance frame: %v", err)
	}
	if !ran {
		a.clear(view)
	}
	a.Surface.Present()

	now := glfw.GetTime()
	if a.LastRenderTime > 0 {
		a.FrameCount++
		a.FPSTime += now - a.LastRenderTime
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
			a.Log.Debugf("%.1f fps\n%s", a.FPS, a.Profiler.GetStatsString())
		}
	}
	a.LastRenderTime = now
}

// clear fills the surface when the radiance node skipped the frame, so a
// pending resize or a broken shader never presents stale memory.
func (a *App) clear(view *wgpu.TextureView) {
	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		return
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	if err := pass.End(); err != nil {
		a.Log.Errorf("clear pass End failed: %v", err)
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return
	}
	a.Queue.Submit(cmd)
}

func (a *App) Release() {
	if a.Readback != nil {
		a.Readback.Release()
	}
	if a.Node != nil {
		a.Node.Release()
	}
	a.normal.Release()
	if a.Targets != nil {
		a.Targets.Release()
	}
	if a.Registry != nil {
		a.Registry.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}

// ScreenToWorld maps a cursor position in window coordinates to world space.
// The view spans the framebuffer size; the window size only sets the fraction.
func ScreenToWorld(cam *core.Camera2D, x, y float64, windowW, windowH int, fbW, fbH uint32) mgl32.Vec2 {
	if windowW <= 0 || windowH <= 0 {
		return cam.Position
	}
	return cam.WorldAt(mgl32.Vec2{float32(x / float64(windowW)), float32(y / float64(windowH))}, fbW, fbH)
}
