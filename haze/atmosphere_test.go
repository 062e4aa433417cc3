package haze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtmosphericLightKnownHazyRegion(t *testing.T) {
	// Dark scene with a bright, hazy 2x2 block in the bottom-right corner.
	im := NewImage(6, 6)
	im.MaxValue = 255
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			im.SetRGB(x, y, 10, 20, 5)
		}
	}
	im.SetRGB(4, 4, 200, 210, 190)
	im.SetRGB(5, 4, 230, 205, 180)
	im.SetRGB(4, 5, 215, 240, 185)
	im.SetRGB(5, 5, 190, 200, 220)

	dark, err := DarkChannel(im, 1)
	require.NoError(t, err)

	// floor(36*0.12) = 4 pixels.
	a, err := AtmosphericLight(im, dark, 0.12)
	require.NoError(t, err)
	assert.Equal(t, Airlight{230, 240, 220}, a)
}

func TestAtmosphericLightPercentileSubset(t *testing.T) {
	im := imageFromPixels(t, 2, 2, 255,
		[3]float32{200, 180, 160},
		[3]float32{100, 120, 140},
		[3]float32{50, 60, 70},
		[3]float32{220, 210, 200},
	)
	dark, err := DarkChannel(im, 1)
	require.NoError(t, err)

	// floor(4*0.5) = 2 pixels: dark values 200 (index 3) and 160 (index 0).
	a, err := AtmosphericLight(im, dark, 0.5)
	require.NoError(t, err)
	assert.Equal(t, Airlight{220, 210, 200}, a)

	// floor(4*0.3) = 1 pixel: only index 3.
	a, err = AtmosphericLight(im, dark, 0.3)
	require.NoError(t, err)
	assert.Equal(t, Airlight{220, 210, 200}, a)
}

func TestAtmosphericLightTieBreakByIndex(t *testing.T) {
	// All dark channel values tie; the lowest flattened indices win.
	im := imageFromPixels(t, 3, 1, 255,
		[3]float32{50, 90, 60},
		[3]float32{90, 50, 70},
		[3]float32{99, 99, 50},
	)
	dark := uniformMap(3, 1, 50)

	a, err := AtmosphericLight(im, dark, 0.7)
	require.NoError(t, err)
	assert.Equal(t, Airlight{90, 90, 70}, a)

	for i := 0; i < 10; i++ {
		again, err := AtmosphericLight(im, dark, 0.7)
		require.NoError(t, err)
		assert.Equal(t, a, again)
	}
}

func TestAtmosphericLightIsMaximumOfSelection(t *testing.T) {
	im := randomImage(40, 30, 11)
	dark, err := DarkChannel(im, 7)
	require.NoError(t, err)

	a, err := AtmosphericLight(im, dark, 1)
	require.NoError(t, err)

	// With every pixel selected the airlight is the global channel maximum.
	var want Airlight
	for i := 0; i < len(im.Pix); i += Channels {
		for c := 0; c < Channels; c++ {
			want[c] = max(want[c], im.Pix[i+c])
		}
	}
	assert.Equal(t, want, a)
}

func TestAtmosphericLightInvalidArguments(t *testing.T) {
	im := randomImage(4, 4, 2)
	dark, err := DarkChannel(im, 3)
	require.NoError(t, err)

	t.Run("percentile selects nothing", func(t *testing.T) {
		one := randomImage(1, 1, 1)
		d, err := DarkChannel(one, 1)
		require.NoError(t, err)
		_, err = AtmosphericLight(one, d, 0.0001)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	for _, p := range []float64{0, -0.5, 1.5} {
		_, err := AtmosphericLight(im, dark, p)
		assert.ErrorIsf(t, err, ErrInvalidArgument, "percentile %v", p)
	}

	_, err = AtmosphericLight(im, NewMap(3, 4), 0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument, "mismatched extent")

	_, err = AtmosphericLight(im, nil, 0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument, "nil dark channel")

	_, err = AtmosphericLight(nil, dark, 0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument, "nil image")
}
