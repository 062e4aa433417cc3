package haze

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// imageFromPixels builds a 3-channel image from row-major RGB triples.
func imageFromPixels(t *testing.T, width, height int, maxValue float32, pixels ...[3]float32) *Image {
	t.Helper()
	require.Len(t, pixels, width*height)
	pix := make([]float32, 0, width*height*Channels)
	for _, p := range pixels {
		pix = append(pix, p[0], p[1], p[2])
	}
	im, err := NewImageFromSlice(width, height, Channels, maxValue, pix)
	require.NoError(t, err)
	return im
}

// randomImage returns a deterministic 8-bit-range image.
func randomImage(width, height int, seed int64) *Image {
	rng := rand.New(rand.NewSource(seed))
	im := NewImage(width, height)
	im.MaxValue = 255
	for i := range im.Pix {
		im.Pix[i] = float32(rng.Intn(256))
	}
	return im
}

// uniformMap returns a map with every value set to v.
func uniformMap(width, height int, v float32) *Map {
	m := NewMap(width, height)
	for i := range m.Data {
		m.Data[i] = v
	}
	return m
}
