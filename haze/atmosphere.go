package haze

import (
	"slices"
)

// AtmosphericLight estimates the airlight from the haziest pixels.
//
// The dark channel is ranked in descending order, ties broken by ascending
// flattened index so the selection is reproducible. The top
// floor(H*W*percentile) locations are gathered from im and the per-channel
// maximum over them is returned.
//
// Arguments:
// - im: The source image.
// - dark: The dark channel of im (same spatial extent).
// - percentile: Fraction of pixels to consider, in (0, 1].
//
// Returns:
// - The airlight in the sample scale of im.
// - An error wrapping ErrInvalidArgument on bad input or when the percentile
// selects no pixel.
func AtmosphericLight(im *Image, dark *Map, percentile float64) (Airlight, error) {
	var a Airlight
	if err := im.validate(); err != nil {
		return a, err
	}
	if err := dark.validate("dark channel"); err != nil {
		return a, err
	}
	if err := sameExtent(im, dark, "dark channel"); err != nil {
		return a, err
	}
	if !(percentile > 0 && percentile <= 1) {
		return a, invalidf("percentile %v outside (0, 1]", percentile)
	}

	n := len(dark.Data)
	count := int(float64(n) * percentile)
	if count == 0 {
		return a, invalidf("percentile %v selects no pixel of %d", percentile, n)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(i, j int) int {
		vi, vj := dark.Data[i], dark.Data[j]
		switch {
		case vi > vj:
			return -1
		case vi < vj:
			return 1
		default:
			return i - j
		}
	})

	first := order[0] * Channels
	copy(a[:], im.Pix[first:first+Channels])
	for _, idx := range order[1:count] {
		p := im.Pix[idx*Channels : idx*Channels+Channels]
		for c := 0; c < Channels; c++ {
			if p[c] > a[c] {
				a[c] = p[c]
			}
		}
	}
	return a, nil
}
