package haze

import (
	"github.com/nvr-ai/go-dehaze/images/kernels"
)

// parallelThreshold is the pixel count above which stages split work across
// goroutines. Results are identical either way.
const parallelThreshold = 256 * 256

// DarkChannel computes, for every pixel, the minimum sample over all three
// channels and over the patchSize x patchSize window centered on it. Windows
// are clipped at the image borders (no padding or wrap), so border windows are
// smaller.
//
// The minimum is taken per pixel across channels first and then spatially
// with the O(H*W) sliding-window filter of kernels.MinFilter. The result is
// identical to DarkChannelNaive.
//
// Arguments:
// - im: A 3-channel image with non-zero extent.
// - patchSize: A positive odd window size.
//
// Returns:
// - The dark channel map with the spatial extent of im.
// - An error wrapping ErrInvalidArgument on bad input.
func DarkChannel(im *Image, patchSize int) (*Map, error) {
	if err := validatePatch(patchSize); err != nil {
		return nil, err
	}
	if err := im.validate(); err != nil {
		return nil, err
	}

	parallel := im.Width*im.Height >= parallelThreshold
	mins := channelMin(im, parallel)
	data := kernels.MinFilter(mins, im.Width, im.Height, kernels.Options{
		Radius:   (patchSize - 1) / 2,
		Parallel: parallel,
	})
	return &Map{Width: im.Width, Height: im.Height, Data: data}, nil
}

// DarkChannelNaive is the direct O(H*W*patchSize^2) windowed minimum. It is the
// reference DarkChannel is checked against.
func DarkChannelNaive(im *Image, patchSize int) (*Map, error) {
	if err := validatePatch(patchSize); err != nil {
		return nil, err
	}
	if err := im.validate(); err != nil {
		return nil, err
	}

	half := (patchSize - 1) / 2
	out := NewMap(im.Width, im.Height)
	for y := 0; y < im.Height; y++ {
		y0, y1 := max(y-half, 0), min(y+half, im.Height-1)
		for x := 0; x < im.Width; x++ {
			x0, x1 := max(x-half, 0), min(x+half, im.Width-1)
			m := im.At(x0, y0, 0)
			for wy := y0; wy <= y1; wy++ {
				for wx := x0; wx <= x1; wx++ {
					for c := 0; c < Channels; c++ {
						if v := im.At(wx, wy, c); v < m {
							m = v
						}
					}
				}
			}
			out.Set(x, y, m)
		}
	}
	return out, nil
}

// channelMin reduces each pixel to the minimum of its three samples.
func channelMin(im *Image, parallel bool) []float32 {
	out := make([]float32, im.Width*im.Height)
	kernels.ForEachChunk(im.Height, parallel, func(start, end int) {
		for i := start * im.Width; i < end*im.Width; i++ {
			p := im.Pix[i*Channels : i*Channels+Channels : i*Channels+Channels]
			m := p[0]
			if p[1] < m {
				m = p[1]
			}
			if p[2] < m {
				m = p[2]
			}
			out[i] = m
		}
	})
	return out
}

func validatePatch(patchSize int) error {
	if patchSize <= 0 {
		return invalidf("patch size %d must be positive", patchSize)
	}
	if patchSize%2 == 0 {
		return invalidf("patch size %d must be odd to center the window", patchSize)
	}
	return nil
}
