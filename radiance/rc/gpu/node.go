package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

// Frame is the per-view input of one Node.Run.
type Frame struct {
	Config  core.Config
	Flags   core.Flags
	Camera  *core.Camera2D
	Records *core.ShapeRecords

	// Dest receives the composite at native resolution.
	Dest *wgpu.TextureView
	// Scene and Normal are optional; nil binds the flat fallbacks.
	Scene  *wgpu.TextureView
	Normal *wgpu.TextureView
}

type bindKey struct {
	targets uint64
	buffers uint64
	final   core.Role
	scene   *wgpu.TextureView
	normal  *wgpu.TextureView
}

// Node records the radiance passes of a frame into one command buffer.
type Node struct {
	Device   *wgpu.Device
	Registry *Registry
	Targets  *TargetManager
	Buffers  *Buffers
	// Readback, when set, copies its target at the end of each frame it is armed for.
	Readback *Readback

	sdf       SDFPass
	cascade   CascadePass
	mipmap    MipmapPass
	composite CompositePass

	bound    bindKey
	hasBound bool
	log      core.Logger
}

func NewNode(device *wgpu.Device, registry *Registry, targets *TargetManager, log core.Logger) *Node {
	return &Node{
		Device:   device,
		Registry: registry,
		Targets:  targets,
		Buffers:  NewBuffers(device),
		log:      core.OrNop(log),
	}
}

// Run executes the frame plan. It returns false without an error when the
// node cannot render this frame yet, for example while the targets still
// match an older sizing config. The caller skips the frame.
func (n *Node) Run(frame Frame) (bool, error) {
	if frame.Dest == nil {
		n.log.Debugf("radiance: no destination view, skipping frame")
		return false, nil
	}
	if !n.Registry.Ready() {
		n.log.Debugf("radiance: pipelines not ready, skipping frame")
		return false, nil
	}
	targets := n.Targets.Current()
	if targets == nil {
		n.log.Debugf("radiance: targets not allocated, skipping frame")
		return false, nil
	}

	cfg := frame.Config.Sanitize()
	size := targets.Size
	if !targets.Config.SizingEqual(cfg) {
		built := targets.Config
		n.log.Debugf("radiance: targets pending resize (scale %g cascades %d probe base %d, frame wants %g %d %d)",
			built.ScaleFactor, built.CascadeCount, built.ProbeBase, cfg.ScaleFactor, cfg.CascadeCount, cfg.ProbeBase)
		return false, nil
	}

	camera := frame.Camera
	if camera == nil {
		camera = core.NewCamera2D()
	}

	plan := core.PlanFrame(cfg)
	probes := core.BuildProbes(cfg)
	err := n.Buffers.Upload(FrameData{
		Config:  core.NewGpuConfig(cfg, size, frame.Flags),
		View:    camera.UniformBytes(size.Native[0], size.Native[1]),
		Probes:  probes,
		Records: frame.Records,
	})
	if err != nil {
		return false, fmt.Errorf("upload radiance buffers: %w", err)
	}

	key := bindKey{
		targets: targets.Generation,
		buffers: n.Buffers.Generation(),
		final:   plan.Final,
		scene:   frame.Scene,
		normal:  frame.Normal,
	}
	if !n.hasBound || key != n.bound {
		if err := n.createBindGroups(targets, plan.Final, frame.Scene, frame.Normal); err != nil {
			n.hasBound = false
			return false, err
		}
		n.bound = key
		n.hasBound = true
	}

	encoder, err := n.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "RadianceEncoder"})
	if err != nil {
		return false, fmt.Errorf("create radiance encoder: %w", err)
	}

	for _, planned := range plan.Passes {
		pipeline, ok := n.Registry.Pipeline(planned.Kind)
		if !ok {
			encoder.Release()
			return false, nil
		}

		var err error
		switch planned.Kind {
		case core.PassSDF:
			err = n.sdf.Encode(encoder, pipeline, targets, planned)
		case core.PassCascade:
			err = n.cascade.Encode(encoder, pipeline, targets, probes, planned)
		case core.PassMipmap:
			err = n.mipmap.Encode(encoder, pipeline, targets, planned)
		case core.PassComposite:
			err = n.composite.Encode(encoder, pipeline, frame.Dest, planned)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownPipeline, planned.Kind)
		}
		if err != nil {
			encoder.Release()
			return false, err
		}
	}

	if n.Readback != nil {
		n.Readback.Encode(encoder, targets)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return false, fmt.Errorf("finish radiance encoder: %w", err)
	}
	n.Device.GetQueue().Submit(cmd)
	return true, nil
}

func (n *Node) createBindGroups(targets *TargetSet, final core.Role, scene, normal *wgpu.TextureView) error {
	if err := n.sdf.CreateBindGroup(n.Registry, n.Buffers); err != nil {
		return err
	}
	if err := n.cascade.CreateBindGroups(n.Registry, n.Buffers, targets); err != nil {
		return err
	}
	if err := n.mipmap.CreateBindGroup(n.Registry, n.Buffers, targets, final); err != nil {
		return err
	}
	return n.composite.CreateBindGroup(n.Registry, n.Buffers, targets, final, scene, normal)
}

func (n *Node) Release() {
	n.sdf.Release()
	n.cascade.Release()
	n.mipmap.Release()
	n.composite.Release()
	n.Buffers.Release()
	if n.Readback != nil {
		n.Readback.Release()
	}
	n.hasBound = false
}
