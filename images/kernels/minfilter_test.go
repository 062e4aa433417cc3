package kernels

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPlane(w, h int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	p := make([]float32, w*h)
	for i := range p {
		p[i] = float32(rng.Intn(256))
	}
	return p
}

func TestMinFilterRadiusZeroReturnsCopy(t *testing.T) {
	src := []float32{3, 1, 2, 5}
	out := MinFilter(src, 2, 2, Options{Radius: 0})
	require.Equal(t, src, out)

	out[0] = 99
	assert.Equal(t, float32(3), src[0], "source must not alias the output")
}

func TestMinFilterKnownPlane(t *testing.T) {
	// 5x5 plane with a single low sample at (1,3).
	src := make([]float32, 25)
	for i := range src {
		src[i] = 10
	}
	src[3*5+1] = 2

	out := MinFilter(src, 5, 5, Options{Radius: 1})

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			want := float32(10)
			if x >= 0 && x <= 2 && y >= 2 && y <= 4 {
				want = 2
			}
			assert.Equalf(t, want, out[y*5+x], "pixel (%d,%d)", x, y)
		}
	}
}

func TestMinFilterMatchesNaive(t *testing.T) {
	cases := []struct {
		name   string
		w, h   int
		radius int
	}{
		{"single pixel", 1, 1, 3},
		{"single row", 17, 1, 2},
		{"single column", 1, 13, 4},
		{"square small radius", 9, 9, 1},
		{"radius larger than image", 6, 5, 7},
		{"wide", 64, 7, 3},
		{"tall", 5, 70, 5},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := randomPlane(tc.w, tc.h, int64(i+1))
			want := MinFilterNaive(src, tc.w, tc.h, tc.radius)
			got := MinFilter(src, tc.w, tc.h, Options{Radius: tc.radius})
			assert.Equal(t, want, got)
		})
	}
}

func TestMinFilterParallelMatchesSequential(t *testing.T) {
	w, h := 301, 157
	src := randomPlane(w, h, 42)

	seq := MinFilter(src, w, h, Options{Radius: 7})
	par := MinFilter(src, w, h, Options{Radius: 7, Parallel: true})

	assert.Equal(t, seq, par)
	assert.Equal(t, MinFilterNaive(src, w, h, 7), par)
}

func TestMinFilterEmptyPlane(t *testing.T) {
	assert.Empty(t, MinFilter(nil, 0, 0, Options{Radius: 2}))
}

func TestMinFilterDuplicateValues(t *testing.T) {
	// Equal neighbours exercise the >= eviction in the deque.
	src := []float32{4, 4, 4, 1, 1, 4, 4}
	got := MinFilter(src, 7, 1, Options{Radius: 1})
	assert.Equal(t, []float32{4, 4, 1, 1, 1, 1, 4}, got)
}

func TestChooseChunk(t *testing.T) {
	assert.Equal(t, 32, chooseChunk(100))
	assert.Equal(t, 64, chooseChunk(512))
	assert.Equal(t, 128, chooseChunk(4096))
}

func TestForEachChunkCoversRange(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		seen := make([]int32, 1000)
		ForEachChunk(len(seen), parallel, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, n := range seen {
			require.Equalf(t, int32(1), n, "index %d visited %d times (parallel=%v)", i, n, parallel)
		}
	}
}
