package haze

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepthFullTransmissionIsZero(t *testing.T) {
	for _, beta := range []float64{0.1, 1, 2.5, 100} {
		d, err := DepthFromTransmission(uniformMap(4, 3, 1), beta)
		require.NoError(t, err)
		for _, v := range d.Data {
			assert.Equal(t, float32(0), v)
			assert.False(t, math.Signbit(float64(v)), "depth must be +0")
		}
	}
}

func TestDepthFormula(t *testing.T) {
	tm := &Map{Width: 3, Height: 1, Data: []float32{0.5, 0.25, 0.125}}

	d, err := DepthFromTransmission(tm, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.5, 1, 1.5}, d.Data, 1e-6)
}

func TestDepthInvalidArguments(t *testing.T) {
	for _, bad := range []float32{0, -0.2} {
		tm := uniformMap(2, 2, 0.5)
		tm.Data[3] = bad
		d, err := DepthFromTransmission(tm, 1)
		assert.ErrorIsf(t, err, ErrInvalidArgument, "transmission %v", bad)
		assert.Nil(t, d)
	}

	for _, beta := range []float64{0, -1} {
		_, err := DepthFromTransmission(uniformMap(2, 2, 0.5), beta)
		assert.ErrorIsf(t, err, ErrInvalidArgument, "beta %v", beta)
	}

	_, err := DepthFromTransmission(nil, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
