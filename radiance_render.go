package gekko

import (
	"fmt"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/gekko3d/gekko2d/radiance/rc/gpu"
	"github.com/gekko3d/gekko2d/radiance/rc/shaders"
)

// RadianceRenderer owns the GPU side of the radiance pipeline. It is created
// on the first resize after a GpuState becomes available.
type RadianceRenderer struct {
	gpu      *GpuState
	Registry *gpu.Registry
	Targets  *gpu.TargetManager
	Node     *gpu.Node
	Watcher  *shaders.Watcher

	normal        gpu.Texture
	normalId      AssetId
	normalVersion uint
	normalSize    [2]uint32
}

// radianceRendererFailed marks a renderer that could not be built so
// construction is not retried every frame.
type radianceRendererFailed struct{}

func ensureRadianceRenderer(cmd *Commands, settings *RadianceSettings) (*RadianceRenderer, bool) {
	if r, ok := GetResource[RadianceRenderer](cmd); ok {
		return r, true
	}
	if _, failed := GetResource[radianceRendererFailed](cmd); failed {
		return nil, false
	}
	gs, ok := ensureGpuState(cmd)
	if !ok {
		return nil, false
	}

	r, err := newRadianceRenderer(gs, settings.ShaderDir, cmd.app.Logger())
	if err != nil {
		cmd.app.Logger().Errorf("radiance renderer: %v", err)
		cmd.AddResources(&radianceRendererFailed{})
		return nil, false
	}
	cmd.AddResources(r)
	return r, true
}

func newRadianceRenderer(gs *GpuState, shaderDir string, log Logger) (*RadianceRenderer, error) {
	sources := shaders.Embedded()
	var watcher *shaders.Watcher
	if shaderDir != "" {
		var err error
		if sources, err = shaders.Load(shaderDir); err != nil {
			return nil, err
		}
		watcher = shaders.NewWatcher(shaderDir, shaders.DefaultPollInterval)
	}

	registry, err := gpu.NewRegistry(gs.device, gs.Format(), sources, log)
	if err != nil {
		return nil, err
	}
	targets := gpu.NewTargetManager(gs.device, log)
	return &RadianceRenderer{
		gpu:      gs,
		Registry: registry,
		Targets:  targets,
		Node:     gpu.NewNode(gs.device, registry, targets, log),
		Watcher:  watcher,
	}, nil
}

// resize reconfigures the surface, rebuilds targets and refreshes the normal map.
func (r *RadianceRenderer) resize(size core.ComputedSize, cfg core.Config, cmd *Commands) error {
	r.gpu.Reconfigure(size.Native)
	if err := r.Targets.Resize(size, cfg); err != nil {
		return err
	}
	settings, _ := GetResource[RadianceSettings](cmd)
	server, _ := GetResource[AssetServer](cmd)
	return r.syncNormal(server, settings.NormalMap, size.Native)
}

// syncNormal uploads the normal map rescaled to the viewport when the asset,
// its version or the viewport changed.
func (r *RadianceRenderer) syncNormal(server *AssetServer, id AssetId, native [2]uint32) error {
	if server == nil || id == "" {
		return nil
	}
	tex, ok := server.Texture(id)
	if !ok {
		return fmt.Errorf("normal map %s not loaded", id)
	}
	if r.normal.View != nil && r.normalId == id && r.normalVersion == tex.Version && r.normalSize == native {
		return nil
	}
	img, err := server.TextureSized(id, int(native[0]), int(native[1]))
	if err != nil {
		return err
	}
	uploaded, err := gpu.UploadImage(r.gpu.device, "RadianceNormalMap", img)
	if err != nil {
		return err
	}
	r.normal.Release()
	r.normal = uploaded
	r.normalId, r.normalVersion, r.normalSize = id, tex.Version, native
	return nil
}

func (r *RadianceRenderer) Release() {
	r.Node.Release()
	r.normal.Release()
	r.Targets.Release()
	r.Registry.Release()
}

// radianceRenderSystem runs the node into the swapchain image. Skipped
// frames clear the surface so stale memory is never presented.
func radianceRenderSystem(cmd *Commands, settings *RadianceSettings, frame *RadianceFrame) {
	r, ok := GetResource[RadianceRenderer](cmd)
	if !ok {
		return
	}
	log := cmd.app.Logger()

	tex, view, err := r.gpu.BeginFrame()
	if err != nil {
		log.Errorf("radiance frame: %v", err)
		return
	}
	defer tex.Release()
	defer view.Release()

	ran, err := r.Node.Run(gpu.Frame{
		Config:  settings.Config,
		Flags:   settings.Flags,
		Camera:  frame.Camera,
		Records: &frame.Records,
		Dest:    view,
		Normal:  r.normal.View,
	})
	if err != nil {
		log.Errorf("radiance frame: %v", err)
	}
	if !ran {
		if err := r.gpu.Clear(view); err != nil {
			log.Errorf("radiance clear: %v", err)
		}
	}
	r.gpu.Present()
}

// radianceReloadSystem recompiles pipelines whose WGSL changed on disk. A
// failed compile leaves that pipeline missing until the file is fixed.
func radianceReloadSystem(cmd *Commands) {
	r, ok := GetResource[RadianceRenderer](cmd)
	if !ok || r.Watcher == nil {
		return
	}
	log := cmd.app.Logger()

	changes, err := r.Watcher.Poll()
	if err != nil {
		log.Warnf("shader watcher: %v", err)
		return
	}
	for _, c := range changes {
		// Reload logs the outcome itself.
		_ = r.Registry.Reload(c.Kind, c.Code)
	}
}
