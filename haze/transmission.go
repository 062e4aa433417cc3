package haze

import (
	"github.com/nvr-ai/go-dehaze/images/kernels"
)

// Transmission estimates the fraction of scene radiance reaching the sensor:
// t = 1 - omega * DarkChannel(im / airlight, patchSize).
//
// The result is NOT clamped. Values are expected near (0, 1] but may leave
// that range; bounding them (for example with ClampMap, or through the floor
// of RecoverRadiance) is the consumer's decision.
//
// Arguments:
// - im: The hazy image.
// - a: The airlight of im; every channel must be > 0.
// - omega: Haze retention factor, > 0 (typically 0.95).
// - patchSize: A positive odd window size.
//
// Returns:
// - The transmission map with the spatial extent of im.
// - An error wrapping ErrInvalidArgument on bad input.
func Transmission(im *Image, a Airlight, omega float64, patchSize int) (*Map, error) {
	if err := im.validate(); err != nil {
		return nil, err
	}
	if err := validatePatch(patchSize); err != nil {
		return nil, err
	}
	for c, v := range a {
		if !(v > 0) {
			return nil, invalidf("airlight channel %d is %v, must be > 0", c, v)
		}
	}
	if !(omega > 0) {
		return nil, invalidf("omega %v must be > 0", omega)
	}

	parallel := im.Width*im.Height >= parallelThreshold
	normalized := &Image{
		Width:    im.Width,
		Height:   im.Height,
		Channels: Channels,
		MaxValue: 1,
		Pix:      make([]float32, len(im.Pix)),
	}
	kernels.ForEachChunk(im.Height, parallel, func(start, end int) {
		for i := start * im.Width * Channels; i < end*im.Width*Channels; i += Channels {
			normalized.Pix[i] = im.Pix[i] / a[0]
			normalized.Pix[i+1] = im.Pix[i+1] / a[1]
			normalized.Pix[i+2] = im.Pix[i+2] / a[2]
		}
	})

	dark, err := DarkChannel(normalized, patchSize)
	if err != nil {
		return nil, err
	}
	w := float32(omega)
	for i, v := range dark.Data {
		dark.Data[i] = 1 - w*v
	}
	return dark, nil
}
