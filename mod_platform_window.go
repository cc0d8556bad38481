package gekko

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the shared GLFW window. Sizes are refreshed once per frame
// by the window system.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	// Framebuffer size in pixels; differs from the window size on HiDPI.
	FramebufferWidth  int
	FramebufferHeight int
	windowTitle       string
}

// FramebufferSize returns the drawable size, zero while minimized.
func (s *WindowState) FramebufferSize() [2]uint32 {
	return [2]uint32{uint32(max(s.FramebufferWidth, 0)), uint32(max(s.FramebufferHeight, 0))}
}

// PlatformWindowModule provides a single shared WindowState resource.
// Install is idempotent: an existing WindowState is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

// NewPlatformWindow creates a module that provides a shared WindowState resource.
// If Width/Height are zero, sensible defaults are used.
func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Gekko"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := GetResource[WindowState](cmd); ok {
		return
	}

	ws := createWindowState(m.Width, m.Height, m.Title)
	app.addResources(ws)
	app.Logger().Infof("created window %dx%d '%s'", m.Width, m.Height, m.Title)
	app.UseSystem(System(windowSystem).InStage(Prelude).RunAlways())
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	fbw, fbh := win.GetFramebufferSize()
	return &WindowState{
		windowGlfw:        win,
		WindowWidth:       windowWidth,
		WindowHeight:      windowHeight,
		FramebufferWidth:  fbw,
		FramebufferHeight: fbh,
		windowTitle:       windowTitle,
	}
}

// windowSystem pumps GLFW events and exits the app when the window closes.
func windowSystem(cmd *Commands, s *WindowState) {
	glfw.PollEvents()

	s.WindowWidth, s.WindowHeight = s.windowGlfw.GetSize()
	s.FramebufferWidth, s.FramebufferHeight = s.windowGlfw.GetFramebufferSize()

	if s.windowGlfw.ShouldClose() || s.windowGlfw.GetKey(glfw.KeyEscape) == glfw.Press {
		cmd.Exit()
	}
}

// GpuState owns the device and the window surface.
type GpuState struct {
	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

func createGpuState(s *WindowState) (*GpuState, error) {
	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}

	caps := surface.GetCapabilities(adapter)
	gs := &GpuState{
		instance: instance,
		surface:  surface,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
		surfaceConfig: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      caps.Formats[0],
			Width:       uint32(max(s.FramebufferWidth, 1)),
			Height:      uint32(max(s.FramebufferHeight, 1)),
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   caps.AlphaModes[0],
		},
	}
	surface.Configure(adapter, device, gs.surfaceConfig)
	return gs, nil
}

// ensureGpuState creates the GpuState resource once a window exists.
func ensureGpuState(cmd *Commands) (*GpuState, bool) {
	if gs, ok := GetResource[GpuState](cmd); ok {
		return gs, true
	}
	ws, ok := GetResource[WindowState](cmd)
	if !ok || ws.windowGlfw == nil {
		return nil, false
	}
	gs, err := createGpuState(ws)
	if err != nil {
		cmd.app.Logger().Errorf("gpu init: %v", err)
		return nil, false
	}
	cmd.AddResources(gs)
	return gs, true
}

func (g *GpuState) Device() *wgpu.Device { return g.device }

func (g *GpuState) Format() wgpu.TextureFormat { return g.surfaceConfig.Format }

// SurfaceSize is the configured swapchain size.
func (g *GpuState) SurfaceSize() [2]uint32 {
	return [2]uint32{g.surfaceConfig.Width, g.surfaceConfig.Height}
}

// Reconfigure resizes the swapchain. Zero sizes are ignored.
func (g *GpuState) Reconfigure(size [2]uint32) {
	if size[0] == 0 || size[1] == 0 || size == g.SurfaceSize() {
		return
	}
	g.surfaceConfig.Width = size[0]
	g.surfaceConfig.Height = size[1]
	g.surface.Configure(g.adapter, g.device, g.surfaceConfig)
}

// BeginFrame acquires the next swapchain image. Release the texture and the
// view after Present.
func (g *GpuState) BeginFrame() (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := g.surface.GetCurrentTexture()
	if err != nil {
		return nil, nil, fmt.Errorf("get current texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create view: %w", err)
	}
	return tex, view, nil
}

func (g *GpuState) Present() {
	g.surface.Present()
}

// Clear fills view with black.
func (g *GpuState) Clear(view *wgpu.TextureView) error {
	encoder, err := g.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
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
		return err
	}
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	g.queue.Submit(cmdBuf)
	return nil
}

func (g *GpuState) Release() {
	g.device.Release()
	g.adapter.Release()
	g.surface.Release()
	g.instance.Release()
}
