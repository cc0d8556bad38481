package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

// MipmapPass averages each cascade 0 probe of the final merge buffer.
type MipmapPass struct {
	BindGroup *wgpu.BindGroup
}

func (p *MipmapPass) CreateBindGroup(reg *Registry, bufs *Buffers, targets *TargetSet, final core.Role) error {
	releaseBindGroup(&p.BindGroup)
	bg, err := reg.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "RadianceMipmapBG",
		Layout: reg.Layout(core.PassMipmap),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bufs.ConfigBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: targets.View(final)},
		},
	})
	if err != nil {
		return fmt.Errorf("create mipmap bind group: %w", err)
	}
	p.BindGroup = bg
	return nil
}

func (p *MipmapPass) Encode(encoder *wgpu.CommandEncoder, pipeline *wgpu.RenderPipeline, targets *TargetSet, planned core.PlannedPass) error {
	return drawFullscreen(encoder, planned.Label, targets.View(planned.Write), pipeline, p.BindGroup, nil)
}

func (p *MipmapPass) Release() {
	releaseBindGroup(&p.BindGroup)
}
