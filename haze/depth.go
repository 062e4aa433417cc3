package haze

import (
	"github.com/chewxy/math32"
)

// DepthFromTransmission converts transmission into relative scene depth,
// depth = -(1/beta) * log2(t), elementwise. Depth is unitless unless beta is
// a calibrated scattering coefficient.
//
// Every transmission value must be > 0: the logarithm is undefined
// elsewhere, so the whole call fails rather than returning a partial map.
func DepthFromTransmission(t *Map, beta float64) (*Map, error) {
	if err := t.validate("transmission"); err != nil {
		return nil, err
	}
	if !(beta > 0) {
		return nil, invalidf("scattering coefficient %v must be > 0", beta)
	}
	for i, v := range t.Data {
		if !(v > 0) {
			return nil, invalidf("transmission %v at (%d,%d) has no depth", v, i%t.Width, i/t.Width)
		}
	}

	inv := float32(1 / beta)
	out := NewMap(t.Width, t.Height)
	for i, v := range t.Data {
		// log2(1) is exactly 0; keep that as +0 rather than -0.
		if l := math32.Log2(v); l != 0 {
			out.Data[i] = -inv * l
		}
	}
	return out, nil
}
