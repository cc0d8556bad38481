package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignedBytesPerRow(t *testing.T) {
	assert.Equal(t, uint32(256), AlignedBytesPerRow(1))
	assert.Equal(t, uint32(256), AlignedBytesPerRow(32))
	assert.Equal(t, uint32(512), AlignedBytesPerRow(33))
}

func TestDecodeRGBA16F_SkipsRowPadding(t *testing.T) {
	const w, h = 2, 2
	bytesPerRow := AlignedBytesPerRow(w)
	data := make([]byte, bytesPerRow*h)

	// texel (1,1) = (1, -2, 0.5, inf)
	o := int(bytesPerRow) + texelBytes
	binary.LittleEndian.PutUint16(data[o:], 0x3c00)
	binary.LittleEndian.PutUint16(data[o+2:], 0xc000)
	binary.LittleEndian.PutUint16(data[o+4:], 0x3800)
	binary.LittleEndian.PutUint16(data[o+6:], 0x7c00)

	px := DecodeRGBA16F(data, w, h, bytesPerRow)
	require.Len(t, px, w*h*4)

	i := (1*w + 1) * 4
	assert.Equal(t, float32(1), px[i])
	assert.Equal(t, float32(-2), px[i+1])
	assert.Equal(t, float32(0.5), px[i+2])
	assert.True(t, math.IsInf(float64(px[i+3]), 1))
	assert.Equal(t, []float32{0, 0, 0, 0}, px[0:4])
}

func TestDecodeRGBA16F_ShortBuffer(t *testing.T) {
	px := DecodeRGBA16F(make([]byte, 8), 4, 4, 256)
	assert.Len(t, px, 64)
}

func TestToNRGBA_Clamps(t *testing.T) {
	img := ToNRGBA([]float32{
		2, -1, 0.5, 1,
		float32(math.NaN()), float32(math.Inf(1)), 0, 0,
	}, 2, 1)

	c := img.NRGBAAt(0, 0)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)
	assert.Equal(t, uint8(128), c.B)
	assert.Equal(t, uint8(255), c.A)

	c = img.NRGBAAt(1, 0)
	assert.Equal(t, uint8(0), c.R)
	assert.Equal(t, uint8(255), c.G)
}

func TestReadback_PixelsBeforeData(t *testing.T) {
	r := NewReadback(nil, core.RoleSDF)
	_, _, _, err := r.Pixels()
	assert.Error(t, err)
	assert.Equal(t, ReadbackIdle, r.State())

	r.Request()
	assert.True(t, r.isArmed())
	assert.Error(t, r.Capture(t.TempDir()+"/x.webp"))
}

type warnLog struct {
	core.Logger
	warnings []string
}

func (l *warnLog) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func TestReadback_FailedCopyReturnsFromWait(t *testing.T) {
	log := &warnLog{Logger: core.OrNop(nil)}
	r := NewReadback(nil, core.RoleMipmap)
	r.Log = log
	r.Request()

	oom := errors.New("out of memory")
	r.StateMu.Lock()
	r.fail(oom)
	r.StateMu.Unlock()

	assert.False(t, r.isArmed())
	assert.Equal(t, ReadbackIdle, r.State())

	start := time.Now()
	_, _, _, err := r.Wait(time.Minute)
	assert.ErrorIs(t, err, oom)
	assert.NotErrorIs(t, err, ErrReadbackTimeout)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "mipmap")

	r.Request()
	assert.NoError(t, r.Err(), "a new request clears the failure")
}

func TestTextureReadback_Name(t *testing.T) {
	r := NewTextureReadback(nil, nil, 4, 2)
	assert.Equal(t, core.NoRole, r.Role)
	assert.Equal(t, [2]uint32{4, 2}, r.Source.Size)
	_, _, _, err := r.Pixels()
	assert.ErrorContains(t, err, "texture")
}

func TestTargetManager_RejectsZeroSize(t *testing.T) {
	m := NewTargetManager(nil, nil)

	err := m.Resize(core.ComputedSize{}, core.DefaultConfig())
	assert.ErrorIs(t, err, ErrZeroSize)
	assert.Nil(t, m.Current())
	assert.Equal(t, uint64(0), m.Generation())
}

func TestTargetSet_UnknownRole(t *testing.T) {
	var set TargetSet
	assert.Nil(t, set.Target(core.NoRole))
	assert.Nil(t, set.View(core.Role(9)))
	assert.NotNil(t, set.Target(core.RoleMipmap))
}
