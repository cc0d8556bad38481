package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

const (
	HeadroomShapes = 16 * 1024
	HeadroomProbes = 0
)

// FrameData is everything uploaded to the GPU for one frame.
type FrameData struct {
	Config  core.GpuConfig
	View    []byte
	Probes  core.ProbeArray
	Records *core.ShapeRecords
}

// Buffers holds the uniform and storage buffers rewritten every frame.
type Buffers struct {
	Device *wgpu.Device

	ConfigBuf  *wgpu.Buffer
	ViewBuf    *wgpu.Buffer
	ProbeBuf   *wgpu.Buffer
	CirclesBuf *wgpu.Buffer
	RectsBuf   *wgpu.Buffer

	// generation changes whenever a buffer is recreated, which invalidates bind groups.
	generation uint64
}

func NewBuffers(device *wgpu.Device) *Buffers {
	return &Buffers{Device: device}
}

func (b *Buffers) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage, headroom int) (bool, error) {
	neededSize := uint64(len(data) + headroom)
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}

	current := *buf
	if current != nil && current.GetSize() >= neededSize {
		if len(data) > 0 {
			b.Device.GetQueue().WriteBuffer(current, 0, data)
		}
		return false, nil
	}

	newBuf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name,
		Size:  neededSize,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return false, fmt.Errorf("create %s: %w", name, err)
	}
	if current != nil {
		current.Release()
	}
	*buf = newBuf

	if len(data) > 0 {
		b.Device.GetQueue().WriteBuffer(*buf, 0, data)
	}
	return true, nil
}

// Upload rewrites every buffer from scratch.
func (b *Buffers) Upload(frame FrameData) error {
	records := frame.Records
	if records == nil {
		records = &core.ShapeRecords{}
	}

	uploads := []struct {
		name     string
		buf      **wgpu.Buffer
		data     []byte
		usage    wgpu.BufferUsage
		headroom int
	}{
		{"RadianceConfigUB", &b.ConfigBuf, frame.Config.Bytes(), wgpu.BufferUsageUniform, 0},
		{"RadianceViewUB", &b.ViewBuf, frame.View, wgpu.BufferUsageUniform, 0},
		{"RadianceProbeUB", &b.ProbeBuf, frame.Probes.Bytes(), wgpu.BufferUsageUniform, HeadroomProbes},
		{"RadianceCirclesSB", &b.CirclesBuf, records.CircleBytes(), wgpu.BufferUsageStorage, HeadroomShapes},
		{"RadianceRectsSB", &b.RectsBuf, records.RectBytes(), wgpu.BufferUsageStorage, HeadroomShapes},
	}

	for _, u := range uploads {
		recreated, err := b.ensureBuffer(u.name, u.buf, u.data, u.usage, u.headroom)
		if err != nil {
			return err
		}
		if recreated {
			b.generation++
		}
	}
	return nil
}

func (b *Buffers) Generation() uint64 {
	return b.generation
}

// Ready reports whether every buffer exists.
func (b *Buffers) Ready() bool {
	return b.ConfigBuf != nil && b.ViewBuf != nil && b.ProbeBuf != nil &&
		b.CirclesBuf != nil && b.RectsBuf != nil
}

func (b *Buffers) Release() {
	for _, buf := range []**wgpu.Buffer{&b.ConfigBuf, &b.ViewBuf, &b.ProbeBuf, &b.CirclesBuf, &b.RectsBuf} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
}
