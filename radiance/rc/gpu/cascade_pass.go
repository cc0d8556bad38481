package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

// CascadePass ray marches one cascade and folds in the coarser one. There is
// one bind group per ping-pong read buffer; the probe is chosen with a
// dynamic offset.
type CascadePass struct {
	readA *wgpu.BindGroup
	readB *wgpu.BindGroup
}

func (p *CascadePass) CreateBindGroups(reg *Registry, bufs *Buffers, targets *TargetSet) error {
	p.Release()

	build := func(read core.Role) (*wgpu.BindGroup, error) {
		bg, err := reg.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "RadianceCascadeBG " + read.String(),
			Layout: reg.Layout(core.PassCascade),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: bufs.ConfigBuf, Size: wgpu.WholeSize},
				{Binding: 1, Buffer: bufs.ViewBuf, Size: wgpu.WholeSize},
				{Binding: 2, Buffer: bufs.ProbeBuf, Size: core.ProbeSize},
				{Binding: 3, TextureView: targets.View(core.RoleSDF)},
				{Binding: 4, TextureView: targets.View(read)},
				{Binding: 5, Sampler: reg.LinearSampler},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create cascade bind group (%s): %w", read, err)
		}
		return bg, nil
	}

	var err error
	if p.readA, err = build(core.RoleMergeA); err != nil {
		return err
	}
	if p.readB, err = build(core.RoleMergeB); err != nil {
		return err
	}
	return nil
}

func (p *CascadePass) bindGroupFor(read core.Role) *wgpu.BindGroup {
	if read == core.RoleMergeA {
		return p.readA
	}
	return p.readB
}

func (p *CascadePass) Encode(encoder *wgpu.CommandEncoder, pipeline *wgpu.RenderPipeline, targets *TargetSet, probes core.ProbeArray, planned core.PlannedPass) error {
	read := planned.Reads[1]
	offsets := []uint32{probes.Offset(planned.Probe)}
	return drawFullscreen(encoder, planned.Label, targets.View(planned.Write), pipeline, p.bindGroupFor(read), offsets)
}

func (p *CascadePass) Release() {
	releaseBindGroup(&p.readA)
	releaseBindGroup(&p.readB)
}
