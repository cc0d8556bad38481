package core

import (
	"encoding/binary"
	"fmt"
)

// ProbeStride is the distance between probes in the dynamic uniform buffer.
// WebGPU requires dynamic offsets aligned to minUniformBufferOffsetAlignment (256).
const ProbeStride = 256

// ProbeSize is the WGSL size of one probe record.
const ProbeSize = 16

// Probe holds the parameters of one cascade iteration.
type Probe struct {
	CascadeIndex uint32
	CascadeCount uint32
	Interval     float32
	ProbeBase    uint32
}

// ProbeArray is the per-frame list of probes in dispatch order.
type ProbeArray struct {
	probes []Probe
	Stride uint32
}

// BuildProbes lists one probe per cascade, coarsest first.
func BuildProbes(cfg Config) ProbeArray {
	probes := make([]Probe, cfg.CascadeCount)
	for c := uint32(0); c < cfg.CascadeCount; c++ {
		probes[c] = Probe{
			CascadeIndex: cfg.CascadeCount - 1 - c,
			CascadeCount: cfg.CascadeCount,
			Interval:     cfg.Interval,
			ProbeBase:    cfg.ProbeBase,
		}
	}
	return ProbeArray{probes: probes, Stride: ProbeStride}
}

func (a ProbeArray) Len() int {
	return len(a.probes)
}

// ProbeAt returns the probe dispatched at iteration i.
func (a ProbeArray) ProbeAt(i int) Probe {
	if i < 0 || i >= len(a.probes) {
		panic(fmt.Sprintf("probe index %d out of range [0,%d)", i, len(a.probes)))
	}
	return a.probes[i]
}

// Offset is the dynamic uniform offset of iteration i.
func (a ProbeArray) Offset(i int) uint32 {
	_ = a.ProbeAt(i)
	return uint32(i) * a.stride()
}

func (a ProbeArray) stride() uint32 {
	if a.Stride == 0 {
		return ProbeStride
	}
	return a.Stride
}

// Bytes packs every probe at its stride. An empty array still yields one slot.
func (a ProbeArray) Bytes() []byte {
	n := max(len(a.probes), 1)
	stride := int(a.stride())
	buf := make([]byte, n*stride)
	for i, p := range a.probes {
		o := i * stride
		binary.LittleEndian.PutUint32(buf[o:], p.CascadeIndex)
		binary.LittleEndian.PutUint32(buf[o+4:], p.CascadeCount)
		putF32(buf, o+8, p.Interval)
		binary.LittleEndian.PutUint32(buf[o+12:], p.ProbeBase)
	}
	return buf
}
