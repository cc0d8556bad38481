package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// drawFullscreen records one render pass that clears view and draws the
// fullscreen triangle with a single bind group.
func drawFullscreen(encoder *wgpu.CommandEncoder, label string, view *wgpu.TextureView, pipeline *wgpu.RenderPipeline, bindGroup *wgpu.BindGroup, offsets []uint32) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, offsets)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

func releaseBindGroup(bg **wgpu.BindGroup) {
	if *bg != nil {
		(*bg).Release()
		*bg = nil
	}
}
