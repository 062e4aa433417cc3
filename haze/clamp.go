package haze

import (
	"github.com/chewxy/math32"
)

// ClampMap returns a copy of m with every value limited to [lo, hi]. It is the
// explicit bounding step the unclamped Transmission leaves to its consumer.
func ClampMap(m *Map, lo, hi float32) (*Map, error) {
	if err := m.validate("input"); err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, invalidf("clamp range [%v, %v] is empty", lo, hi)
	}
	out := NewMap(m.Width, m.Height)
	for i, v := range m.Data {
		out.Data[i] = clamp(v, lo, hi)
	}
	return out, nil
}

// ClampImage returns a copy of im with every sample limited to [lo, hi], e.g.
// [0, 1] to make a recovered radiance image displayable.
func ClampImage(im *Image, lo, hi float32) (*Image, error) {
	if err := im.validate(); err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, invalidf("clamp range [%v, %v] is empty", lo, hi)
	}
	out := *im
	out.Pix = make([]float32, len(im.Pix))
	for i, v := range im.Pix {
		out.Pix[i] = clamp(v, lo, hi)
	}
	return &out, nil
}

func clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}
