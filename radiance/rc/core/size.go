package core

// CascadeExpansion widens the probe buffer horizontally to hold direction bins.
const CascadeExpansion = 4

// ComputedSize is derived from the viewport size and the config.
type ComputedSize struct {
	Native  [2]uint32
	Scaled  [2]uint32
	Cascade [2]uint32
	// ProbeBase is kept so the mipmap size can be derived without the config.
	ProbeBase uint32
}

// ComputeSize derives the scaled and cascade resolutions for a viewport.
// ok is false when the viewport has no area (headless or minimized).
func ComputeSize(native [2]uint32, scale float32, cascadeCount uint32) (size ComputedSize, ok bool) {
	return ComputeSizeWithProbe(native, scale, cascadeCount, 1)
}

func ComputeSizeWithProbe(native [2]uint32, scale float32, cascadeCount uint32, probeBase uint32) (ComputedSize, bool) {
	if native[0] == 0 || native[1] == 0 {
		return ComputedSize{}, false
	}
	if !(scale >= MinScaleFactor) {
		scale = MinScaleFactor
	}
	if scale > MaxScaleFactor {
		scale = MaxScaleFactor
	}

	scaled := [2]uint32{
		scaleDim(native[0], scale),
		scaleDim(native[1], scale),
	}
	return ComputedSize{
		Native:    native,
		Scaled:    scaled,
		Cascade:   [2]uint32{scaled[0] * CascadeExpansion, scaled[1]},
		ProbeBase: max(probeBase, 1),
	}, true
}

// scaleDim floors native/scale and pads it to an even value of at least 2.
func scaleDim(native uint32, scale float32) uint32 {
	d := uint32(float32(native) / scale)
	d += d % 2
	return max(d, 2)
}

// MipmapSize is the light pyramid resolution: one texel per cascade-0 probe.
func (s ComputedSize) MipmapSize() [2]uint32 {
	block := 2 * max(s.ProbeBase, 1)
	return [2]uint32{
		max((s.Scaled[0]+block-1)/block, 1),
		max((s.Scaled[1]+block-1)/block, 1),
	}
}

func (s ComputedSize) Valid() bool {
	return s.Scaled[0] > 0 && s.Scaled[1] > 0
}
