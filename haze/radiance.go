package haze

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-dehaze/images/kernels"
)

// RecoverRadiance inverts the haze model I = J*t + A*(1-t) for J:
//
//	J = (I - A) / max(t, floor) + A
//
// Image and airlight are first divided by im.MaxValue so the result is on the
// normalized [0, 1] scale (MaxValue 1). No clamping happens here; values
// outside [0, 1] are passed through and a display-ready image needs a
// separate ClampImage.
//
// Arguments:
// - im: The hazy image.
// - a: The airlight, in the sample scale of im.
// - t: The transmission map (same spatial extent as im).
// - floor: Positive lower bound applied to every transmission value.
//
// Returns:
// - The recovered radiance image.
// - An error wrapping ErrInvalidArgument on bad input.
func RecoverRadiance(im *Image, a Airlight, t *Map, floor float64) (*Image, error) {
	if err := im.validate(); err != nil {
		return nil, err
	}
	if err := t.validate("transmission"); err != nil {
		return nil, err
	}
	if err := sameExtent(im, t, "transmission"); err != nil {
		return nil, err
	}
	if !(floor > 0) {
		return nil, invalidf("transmission floor %v must be > 0", floor)
	}
	if !(im.MaxValue > 0) {
		return nil, invalidf("image max value %v must be > 0", im.MaxValue)
	}

	scale := 1 / im.MaxValue
	an := [Channels]float32{a[0] * scale, a[1] * scale, a[2] * scale}
	lo := float32(floor)

	out := NewImage(im.Width, im.Height)
	kernels.ForEachChunk(im.Height, im.Width*im.Height >= parallelThreshold, func(start, end int) {
		for i := start * im.Width; i < end*im.Width; i++ {
			ti := math32.Max(t.Data[i], lo)
			off := i * Channels
			for c := 0; c < Channels; c++ {
				out.Pix[off+c] = (im.Pix[off+c]*scale-an[c])/ti + an[c]
			}
		}
	})
	return out, nil
}
