package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

// ErrZeroSize is returned when a target set is requested for an empty viewport.
var ErrZeroSize = errors.New("radiance: zero sized render target")

// TargetFormat is the format of every radiance render target.
const TargetFormat = wgpu.TextureFormatRGBA16Float

const targetUsage = wgpu.TextureUsageTextureBinding | wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc

type Target struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Size    [2]uint32
}

// TargetSet is one complete allocation of the render targets for a size.
type TargetSet struct {
	targets [4]Target
	Size    core.ComputedSize
	// Config is the sanitized config the set was sized for.
	Config     core.Config
	Generation uint64
}

func (s *TargetSet) Target(r core.Role) *Target {
	if r < 0 || int(r) >= len(s.targets) {
		return nil
	}
	return &s.targets[r]
}

func (s *TargetSet) View(r core.Role) *wgpu.TextureView {
	if t := s.Target(r); t != nil {
		return t.View
	}
	return nil
}

func (s *TargetSet) release() {
	for i := range s.targets {
		t := &s.targets[i]
		if t.View != nil {
			t.View.Release()
			t.View = nil
		}
		if t.Texture != nil {
			t.Texture.Release()
			t.Texture = nil
		}
	}
}

// TargetManager owns the render targets and replaces them as a whole when the
// size or sizing config changes.
type TargetManager struct {
	device *wgpu.Device
	log    core.Logger

	mu         sync.Mutex
	current    *TargetSet
	cfg        core.Config
	generation uint64
}

func NewTargetManager(device *wgpu.Device, log core.Logger) *TargetManager {
	return &TargetManager{device: device, log: core.OrNop(log)}
}

// Resize allocates a new target set and swaps it in. The previous set is
// released only after the new one is complete; on error it stays current.
// A request matching the current set does nothing.
func (m *TargetManager) Resize(size core.ComputedSize, cfg core.Config) error {
	if !size.Valid() {
		return ErrZeroSize
	}
	cfg = cfg.Sanitize()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.Size == size && m.cfg.SizingEqual(cfg) {
		return nil
	}

	set, err := m.allocate(size)
	if err != nil {
		return fmt.Errorf("allocate radiance targets %dx%d: %w", size.Scaled[0], size.Scaled[1], err)
	}

	m.generation++
	set.Generation = m.generation
	set.Config = cfg
	old := m.current
	m.current = set
	m.cfg = cfg
	if old != nil {
		old.release()
	}

	m.log.Debugf("radiance targets resized: native=%v scaled=%v mipmap=%v gen=%d",
		size.Native, size.Scaled, size.MipmapSize(), set.Generation)
	return nil
}

func (m *TargetManager) allocate(size core.ComputedSize) (*TargetSet, error) {
	set := &TargetSet{Size: size}
	for _, role := range core.Roles() {
		dim := size.TargetSize(role)
		tex, err := m.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "radiance " + role.String(),
			Size:          wgpu.Extent3D{Width: dim[0], Height: dim[1], DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        TargetFormat,
			Usage:         targetUsage,
		})
		if err != nil {
			set.release()
			return nil, fmt.Errorf("%s texture: %w", role, err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			set.release()
			return nil, fmt.Errorf("%s view: %w", role, err)
		}
		set.targets[role] = Target{Texture: tex, View: view, Size: dim}
	}
	return set, nil
}

// Current returns the active target set, or nil before the first Resize.
// Callers keep the returned pointer for the whole frame.
func (m *TargetManager) Current() *TargetSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Generation increases every time a new target set is swapped in.
func (m *TargetManager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func (m *TargetManager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.release()
		m.current = nil
	}
}
