package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

// CompositePass lights the scene color with the cascade result and writes the
// view destination. Debug flags replace the output with an intermediate buffer.
type CompositePass struct {
	BindGroup *wgpu.BindGroup
}

// CreateBindGroup binds the targets plus the optional scene color and normal
// map; nil views fall back to the registry's 1x1 textures.
func (p *CompositePass) CreateBindGroup(reg *Registry, bufs *Buffers, targets *TargetSet, final core.Role, scene, normal *wgpu.TextureView) error {
	releaseBindGroup(&p.BindGroup)
	if scene == nil {
		scene = reg.FallbackScene.View
	}
	if normal == nil {
		normal = reg.FallbackNormal.View
	}

	bg, err := reg.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "RadianceCompositeBG",
		Layout: reg.Layout(core.PassComposite),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bufs.ConfigBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: scene},
			{Binding: 2, TextureView: targets.View(core.RoleSDF)},
			{Binding: 3, TextureView: targets.View(core.RoleMergeA)},
			{Binding: 4, TextureView: targets.View(core.RoleMergeB)},
			{Binding: 5, TextureView: targets.View(final)},
			{Binding: 6, TextureView: targets.View(core.RoleMipmap)},
			{Binding: 7, TextureView: normal},
			{Binding: 8, Sampler: reg.LinearSampler},
			{Binding: 9, Sampler: reg.PointSampler},
		},
	})
	if err != nil {
		return fmt.Errorf("create composite bind group: %w", err)
	}
	p.BindGroup = bg
	return nil
}

func (p *CompositePass) Encode(encoder *wgpu.CommandEncoder, pipeline *wgpu.RenderPipeline, dest *wgpu.TextureView, planned core.PlannedPass) error {
	return drawFullscreen(encoder, planned.Label, dest, pipeline, p.BindGroup, nil)
}

func (p *CompositePass) Release() {
	releaseBindGroup(&p.BindGroup)
}
