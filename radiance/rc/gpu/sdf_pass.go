package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

// SDFPass writes the scene distance field and closest emission into RoleSDF.
type SDFPass struct {
	BindGroup *wgpu.BindGroup
}

func (p *SDFPass) CreateBindGroup(reg *Registry, bufs *Buffers) error {
	releaseBindGroup(&p.BindGroup)
	bg, err := reg.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "RadianceSDFBG",
		Layout: reg.Layout(core.PassSDF),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bufs.ConfigBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: bufs.ViewBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: bufs.CirclesBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: bufs.RectsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("create sdf bind group: %w", err)
	}
	p.BindGroup = bg
	return nil
}

func (p *SDFPass) Encode(encoder *wgpu.CommandEncoder, pipeline *wgpu.RenderPipeline, targets *TargetSet, planned core.PlannedPass) error {
	return drawFullscreen(encoder, planned.Label, targets.View(planned.Write), pipeline, p.BindGroup, nil)
}

func (p *SDFPass) Release() {
	releaseBindGroup(&p.BindGroup)
}
