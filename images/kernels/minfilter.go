// Package kernels holds windowed image filters that run over flat float32
// planes.
package kernels

import (
	"sync"
)

// Options configures the MinFilter call.
type Options struct {
	Radius   int  // Window half-width (window size = 2*Radius + 1). Must be >= 0.
	Parallel bool // Enable row/column parallelism (good for 1080p+).
}

// MinFilter computes, for every sample of a width x height plane, the minimum
// over the square window of half-width Radius centered on it. Windows are
// clipped at the plane borders: nothing is padded or wrapped, border windows
// simply hold fewer samples.
//
// The filter is separable (min over a rectangle = min over columns of row
// minima) and each pass uses a monotonic deque, so the cost is O(W*H)
// independent of Radius. The result is identical to MinFilterNaive.
//
// src must hold width*height samples in row-major order; it is never
// modified. Returns a freshly allocated plane.
func MinFilter(src []float32, width, height int, opt Options) []float32 {
	dst := make([]float32, width*height)
	if width <= 0 || height <= 0 {
		return dst
	}
	r := opt.Radius
	if r <= 0 {
		copy(dst, src)
		return dst
	}

	tmp := make([]float32, width*height)

	// Horizontal pass: each row is an independent line.
	ForEachChunk(height, opt.Parallel, func(start, end int) {
		deque := make([]int, width)
		for y := start; y < end; y++ {
			minLine(src, tmp, y*width, 1, width, r, deque)
		}
	})

	// Vertical pass: each column is an independent line with stride width.
	ForEachChunk(width, opt.Parallel, func(start, end int) {
		deque := make([]int, height)
		for x := start; x < end; x++ {
			minLine(tmp, dst, x, width, height, r, deque)
		}
	})

	return dst
}

// MinFilterNaive is the brute-force O(W*H*Radius^2) reference for MinFilter.
func MinFilterNaive(src []float32, width, height, radius int) []float32 {
	dst := make([]float32, width*height)
	if radius < 0 {
		radius = 0
	}
	for y := 0; y < height; y++ {
		y0, y1 := clip(y-radius, height), clip(y+radius, height)
		for x := 0; x < width; x++ {
			x0, x1 := clip(x-radius, width), clip(x+radius, width)
			m := src[y0*width+x0]
			for wy := y0; wy <= y1; wy++ {
				row := src[wy*width : wy*width+width]
				for wx := x0; wx <= x1; wx++ {
					if row[wx] < m {
						m = row[wx]
					}
				}
			}
			dst[y*width+x] = m
		}
	}
	return dst
}

// minLine writes the clipped sliding-window minimum of one line of n samples
// starting at off with the given stride. deque must have room for n indices.
//
// The deque holds line positions whose values increase from head to tail.
// Position j enters when the scan reaches it; output i = j - r is emitted once
// the right edge of its window has entered, after dropping positions that
// fell off the left edge.
func minLine(src, dst []float32, off, stride, n, r int, deque []int) {
	head, tail := 0, 0
	for j := 0; j < n+r; j++ {
		if j < n {
			v := src[off+j*stride]
			for tail > head && src[off+deque[tail-1]*stride] >= v {
				tail--
			}
			deque[tail] = j
			tail++
		}
		i := j - r
		if i < 0 {
			continue
		}
		for deque[head] < i-r {
			head++
		}
		dst[off+i*stride] = src[off+deque[head]*stride]
	}
}

// clip clamps i to [0, n-1].
func clip(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// ForEachChunk runs fn over [0, n) split into contiguous chunks, one goroutine
// per chunk when parallel is set.
func ForEachChunk(n int, parallel bool, fn func(start, end int)) {
	if !parallel || n < 4 {
		fn(0, n)
		return
	}

	// Chunk size avoids too many goroutines and preserves cache locality.
	chunk := chooseChunk(n)
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// chooseChunk picks a work chunk size that balances overhead and cache locality.
func chooseChunk(n int) int {
	switch {
	case n >= 2048:
		return 128
	case n >= 512:
		return 64
	default:
		return 32
	}
}
