package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/gekko3d/gekko2d/radiance/rc/shaders"
)

// ErrUnknownPipeline is returned for a pass kind the registry does not build.
var ErrUnknownPipeline = errors.New("radiance: unknown pipeline")

// Texture is a sampled RGBA8 texture with its default view.
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

func (t *Texture) Release() {
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// Registry builds the bind group layouts, samplers, fallback textures and the
// four render pipelines once, and rebuilds single pipelines on shader reload.
type Registry struct {
	Device       *wgpu.Device
	OutputFormat wgpu.TextureFormat

	LinearSampler  *wgpu.Sampler
	PointSampler   *wgpu.Sampler
	FallbackNormal Texture
	FallbackScene  Texture

	layouts         map[core.PassKind]*wgpu.BindGroupLayout
	pipelineLayouts map[core.PassKind]*wgpu.PipelineLayout
	pipelines       map[core.PassKind]*wgpu.RenderPipeline
	log             core.Logger
}

func NewRegistry(device *wgpu.Device, outputFormat wgpu.TextureFormat, sources shaders.Sources, log core.Logger) (*Registry, error) {
	r := &Registry{
		Device:          device,
		OutputFormat:    outputFormat,
		layouts:         make(map[core.PassKind]*wgpu.BindGroupLayout),
		pipelineLayouts: make(map[core.PassKind]*wgpu.PipelineLayout),
		pipelines:       make(map[core.PassKind]*wgpu.RenderPipeline),
		log:             core.OrNop(log),
	}

	if err := r.createSamplers(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.createFallbacks(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.createLayouts(); err != nil {
		r.Release()
		return nil, err
	}

	for _, kind := range shaders.Kinds {
		src, ok := sources[kind]
		if !ok {
			src = shaders.Embedded()[kind]
		}
		pipeline, err := r.buildPipeline(kind, src)
		if err != nil {
			r.Release()
			return nil, err
		}
		r.pipelines[kind] = pipeline
	}
	return r, nil
}

func (r *Registry) createSamplers() error {
	var err error
	r.LinearSampler, err = r.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "RadianceLinearSampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("create linear sampler: %w", err)
	}

	r.PointSampler, err = r.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "RadiancePointSampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("create point sampler: %w", err)
	}
	return nil
}

// createFallbacks makes the 1x1 textures bound when the host supplies no
// normal map (flat +Z) or no scene color (white).
func (r *Registry) createFallbacks() error {
	var err error
	r.FallbackNormal, err = r.solidTexture("RadianceFlatNormal", [4]uint8{128, 128, 255, 255})
	if err != nil {
		return err
	}
	r.FallbackScene, err = r.solidTexture("RadianceWhiteScene", [4]uint8{255, 255, 255, 255})
	return err
}

func (r *Registry) solidTexture(label string, rgba [4]uint8) (Texture, error) {
	return UploadRGBA(r.Device, label, 1, 1, rgba[:])
}

func uniformEntry(binding uint32, size uint64, dynamic bool) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: dynamic,
			MinBindingSize:   size,
		},
	}
}

func storageEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeReadOnlyStorage,
		},
	}
}

func textureEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}
}

func samplerEntry(binding uint32, kind wgpu.SamplerBindingType) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Sampler:    wgpu.SamplerBindingLayout{Type: kind},
	}
}

func (r *Registry) createLayouts() error {
	entries := map[core.PassKind][]wgpu.BindGroupLayoutEntry{
		core.PassSDF: {
			uniformEntry(0, core.GpuConfigSize, false),
			uniformEntry(1, core.ViewUniformSize, false),
			storageEntry(2),
			storageEntry(3),
		},
		core.PassCascade: {
			uniformEntry(0, core.GpuConfigSize, false),
			uniformEntry(1, core.ViewUniformSize, false),
			uniformEntry(2, core.ProbeSize, true),
			textureEntry(3),
			textureEntry(4),
			samplerEntry(5, wgpu.SamplerBindingTypeFiltering),
		},
		core.PassMipmap: {
			uniformEntry(0, core.GpuConfigSize, false),
			textureEntry(1),
		},
		core.PassComposite: {
			uniformEntry(0, core.GpuConfigSize, false),
			textureEntry(1),
			textureEntry(2),
			textureEntry(3),
			textureEntry(4),
			textureEntry(5),
			textureEntry(6),
			textureEntry(7),
			samplerEntry(8, wgpu.SamplerBindingTypeFiltering),
			samplerEntry(9, wgpu.SamplerBindingTypeNonFiltering),
		},
	}

	for _, kind := range shaders.Kinds {
		bgl, err := r.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   "Radiance" + kind.String() + "BGL",
			Entries: entries[kind],
		})
		if err != nil {
			return fmt.Errorf("create %s bind group layout: %w", kind, err)
		}
		r.layouts[kind] = bgl

		pl, err := r.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
			Label:            "Radiance" + kind.String() + "Layout",
			BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
		})
		if err != nil {
			return fmt.Errorf("create %s pipeline layout: %w", kind, err)
		}
		r.pipelineLayouts[kind] = pl
	}
	return nil
}

func (r *Registry) targetFormat(kind core.PassKind) wgpu.TextureFormat {
	if kind == core.PassComposite {
		return r.OutputFormat
	}
	return TargetFormat
}

func (r *Registry) buildPipeline(kind core.PassKind, source string) (*wgpu.RenderPipeline, error) {
	layout, ok := r.pipelineLayouts[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPipeline, kind)
	}

	module, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Radiance" + kind.String() + "Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", kind, err)
	}
	defer module.Release()

	pipeline, err := r.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Radiance" + kind.String() + "Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.targetFormat(kind),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", kind, err)
	}
	return pipeline, nil
}

// Pipeline returns the pipeline for a pass kind, or false while it is missing.
func (r *Registry) Pipeline(kind core.PassKind) (*wgpu.RenderPipeline, bool) {
	p, ok := r.pipelines[kind]
	return p, ok && p != nil
}

func (r *Registry) Layout(kind core.PassKind) *wgpu.BindGroupLayout {
	return r.layouts[kind]
}

// Ready reports whether all four pipelines exist.
func (r *Registry) Ready() bool {
	for _, kind := range shaders.Kinds {
		if _, ok := r.Pipeline(kind); !ok {
			return false
		}
	}
	return true
}

// Reload recompiles one pipeline. When compilation fails the pipeline stays
// missing until a later reload succeeds, and frames are skipped meanwhile.
func (r *Registry) Reload(kind core.PassKind, source string) error {
	if _, ok := r.pipelineLayouts[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPipeline, kind)
	}
	if old, ok := r.pipelines[kind]; ok && old != nil {
		old.Release()
	}
	delete(r.pipelines, kind)

	pipeline, err := r.buildPipeline(kind, source)
	if err != nil {
		r.log.Warnf("radiance %s pipeline reload failed: %v", kind, err)
		return err
	}
	r.pipelines[kind] = pipeline
	r.log.Infof("radiance %s pipeline reloaded", kind)
	return nil
}

func (r *Registry) Release() {
	for kind, p := range r.pipelines {
		if p != nil {
			p.Release()
		}
		delete(r.pipelines, kind)
	}
	for kind, pl := range r.pipelineLayouts {
		pl.Release()
		delete(r.pipelineLayouts, kind)
	}
	for kind, bgl := range r.layouts {
		bgl.Release()
		delete(r.layouts, kind)
	}
	r.FallbackNormal.Release()
	r.FallbackScene.Release()
	r.FallbackNormal, r.FallbackScene = Texture{}, Texture{}
	if r.LinearSampler != nil {
		r.LinearSampler.Release()
		r.LinearSampler = nil
	}
	if r.PointSampler != nil {
		r.PointSampler.Release()
		r.PointSampler = nil
	}
}
