package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoAdapter is returned when no GPU adapter can be acquired.
var ErrNoAdapter = errors.New("radiance: no GPU adapter available")

// Headless is a device without a surface, used for offline renders and tests.
type Headless struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
}

func NewHeadless() (*Headless, error) {
	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		instance.Release()
		return nil, fmt.Errorf("%w: %v", ErrNoAdapter, err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	return &Headless{
		Instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
	}, nil
}

// CreateDestination makes a texture the composite pass can render into.
func (h *Headless) CreateDestination(width, height uint32, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := h.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "RadianceDestination",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create destination: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create destination view: %w", err)
	}
	return tex, view, nil
}

func (h *Headless) Release() {
	if h.Device != nil {
		h.Device.Release()
	}
	if h.Adapter != nil {
		h.Adapter.Release()
	}
	if h.Instance != nil {
		h.Instance.Release()
	}
}
