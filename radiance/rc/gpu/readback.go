package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

// ErrReadbackTimeout is returned by Wait when no data arrived in time.
var ErrReadbackTimeout = errors.New("radiance: readback timed out")

type ReadbackState int

const (
	ReadbackIdle ReadbackState = iota
	ReadbackCopy
	ReadbackMapping
	ReadbackMapped
)

const texelBytes = 8 // RGBA16F

// Readback copies one render target into a mappable buffer and decodes it.
// The state moves idle -> copy -> mapping -> mapped -> idle; map callbacks may
// run on another goroutine so the state is guarded by StateMu.
type Readback struct {
	Device *wgpu.Device
	Role   core.Role
	// Source, when set, is copied instead of the Role target. It must be RGBA16F.
	Source *Target
	Log    core.Logger

	StateMu sync.Mutex
	state   ReadbackState
	armed   bool
	err     error

	buffer      *wgpu.Buffer
	width       uint32
	height      uint32
	bytesPerRow uint32

	last  []float32
	lastW uint32
	lastH uint32
}

func NewReadback(device *wgpu.Device, role core.Role) *Readback {
	return &Readback{Device: device, Role: role}
}

// NewTextureReadback reads an RGBA16F texture outside the target set, such
// as an offscreen composite destination.
func NewTextureReadback(device *wgpu.Device, tex *wgpu.Texture, width, height uint32) *Readback {
	return &Readback{
		Device: device,
		Role:   core.NoRole,
		Source: &Target{Texture: tex, Size: [2]uint32{width, height}},
	}
}

func (r *Readback) name() string {
	if r.Source != nil {
		return "texture"
	}
	return r.Role.String()
}

// AlignedBytesPerRow pads a row to the 256 byte copy alignment.
func AlignedBytesPerRow(width uint32) uint32 {
	return (width*texelBytes + 255) & ^uint32(255)
}

// Request arms one copy at the end of the next frame and clears any earlier failure.
func (r *Readback) Request() {
	r.StateMu.Lock()
	r.armed = true
	r.err = nil
	r.StateMu.Unlock()
}

// Err returns why the last armed copy could not be recorded.
func (r *Readback) Err() error {
	r.StateMu.Lock()
	defer r.StateMu.Unlock()
	return r.err
}

// fail drops the pending request. Callers hold StateMu.
func (r *Readback) fail(err error) {
	r.err = fmt.Errorf("radiance readback of %s: %w", r.name(), err)
	r.armed = false
	r.state = ReadbackIdle
	core.OrNop(r.Log).Warnf("%v", r.err)
}

func (r *Readback) State() ReadbackState {
	r.StateMu.Lock()
	defer r.StateMu.Unlock()
	return r.state
}

// Encode records the texture copy when a request is pending and the buffer is idle.
func (r *Readback) Encode(encoder *wgpu.CommandEncoder, targets *TargetSet) {
	r.StateMu.Lock()
	defer r.StateMu.Unlock()
	if !r.armed || r.state != ReadbackIdle {
		return
	}
	target := r.Source
	if target == nil && targets != nil {
		target = targets.Target(r.Role)
	}
	if target == nil || target.Texture == nil {
		return
	}

	w, h := target.Size[0], target.Size[1]
	bytesPerRow := AlignedBytesPerRow(w)
	size := uint64(bytesPerRow) * uint64(h)
	if r.buffer == nil || r.buffer.GetSize() < size {
		if r.buffer != nil {
			r.buffer.Release()
			r.buffer = nil
		}
		buf, err := r.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "RadianceReadback " + r.name(),
			Size:  size,
			Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		})
		if err != nil {
			r.fail(fmt.Errorf("create %d byte buffer: %w", size, err))
			return
		}
		r.buffer = buf
	}
	r.width, r.height, r.bytesPerRow = w, h, bytesPerRow

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  target.Texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
		},
		&wgpu.ImageCopyBuffer{
			Buffer: r.buffer,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: h,
			},
		},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	r.armed = false
	r.state = ReadbackCopy
}

// Poll advances the state machine. It returns true when fresh pixels were decoded.
func (r *Readback) Poll(wait bool) bool {
	r.StateMu.Lock()
	if r.state == ReadbackCopy {
		r.state = ReadbackMapping
		r.buffer.MapAsync(wgpu.MapModeRead, 0, r.buffer.GetSize(), func(status wgpu.BufferMapAsyncStatus) {
			r.StateMu.Lock()
			defer r.StateMu.Unlock()
			if status == wgpu.BufferMapAsyncStatusSuccess {
				r.state = ReadbackMapped
			} else {
				r.state = ReadbackIdle
			}
		})
	}
	r.StateMu.Unlock()

	r.Device.Poll(wait, nil)

	r.StateMu.Lock()
	defer r.StateMu.Unlock()
	if r.state != ReadbackMapped {
		return false
	}

	size := r.buffer.GetSize()
	data := r.buffer.GetMappedRange(0, uint(size))
	r.last = DecodeRGBA16F(data, r.width, r.height, r.bytesPerRow)
	r.lastW, r.lastH = r.width, r.height
	r.buffer.Unmap()
	r.state = ReadbackIdle
	return true
}

// Wait polls until pixels arrive or the timeout expires. A copy that could not
// be recorded returns its error instead of waiting out the timeout.
func (r *Readback) Wait(timeout time.Duration) ([]float32, uint32, uint32, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := r.Err(); err != nil {
			return nil, 0, 0, err
		}
		if r.Poll(true) {
			return r.Pixels()
		}
		if r.State() == ReadbackIdle && !r.isArmed() {
			break
		}
	}
	if err := r.Err(); err != nil {
		return nil, 0, 0, err
	}
	return nil, 0, 0, ErrReadbackTimeout
}

func (r *Readback) isArmed() bool {
	r.StateMu.Lock()
	defer r.StateMu.Unlock()
	return r.armed
}

// Pixels returns the last decoded RGBA float pixels.
func (r *Readback) Pixels() ([]float32, uint32, uint32, error) {
	r.StateMu.Lock()
	defer r.StateMu.Unlock()
	if r.last == nil {
		return nil, 0, 0, fmt.Errorf("radiance readback of %s: no data yet", r.name())
	}
	return r.last, r.lastW, r.lastH, nil
}

// Capture writes the last decoded pixels as a WebP image.
func (r *Readback) Capture(path string) error {
	pixels, w, h, err := r.Pixels()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capture %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, ToNRGBA(pixels, w, h), nil); err != nil {
		return fmt.Errorf("encode capture %s: %w", path, err)
	}
	return nil
}

func (r *Readback) Release() {
	r.StateMu.Lock()
	defer r.StateMu.Unlock()
	if r.buffer != nil {
		r.buffer.Release()
		r.buffer = nil
	}
	r.state = ReadbackIdle
	r.armed = false
}

// DecodeRGBA16F unpacks padded RGBA16F rows into tightly packed float32 RGBA.
func DecodeRGBA16F(data []byte, width, height, bytesPerRow uint32) []float32 {
	out := make([]float32, int(width)*int(height)*4)
	for y := uint32(0); y < height; y++ {
		row := int(y * bytesPerRow)
		for x := uint32(0); x < width; x++ {
			src := row + int(x)*texelBytes
			if src+texelBytes > len(data) {
				return out
			}
			dst := int(y*width+x) * 4
			for c := 0; c < 4; c++ {
				out[dst+c] = core.HalfToFloat32(binary.LittleEndian.Uint16(data[src+c*2:]))
			}
		}
	}
	return out
}

// ToNRGBA clamps float RGBA pixels to 8 bit.
func ToNRGBA(pixels []float32, width, height uint32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			i := (y*int(width) + x) * 4
			img.SetNRGBA(x, y, color.NRGBA{
				R: unorm8(pixels[i]),
				G: unorm8(pixels[i+1]),
				B: unorm8(pixels[i+2]),
				A: 255,
			})
		}
	}
	return img
}

func unorm8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
