// Package tensorio converts haze images and maps to and from gorgonia dense
// tensors. It lives apart from haze so that the transforms do not link the
// tensor runtime.
package tensorio

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-dehaze/haze"
)

// FromImage copies the image into a float32 dense tensor of shape (H, W, C),
// the HWC layout downstream ML stages consume.
func FromImage(im *haze.Image) *tensor.Dense {
	backing := append([]float32(nil), im.Pix...)
	return tensor.New(
		tensor.WithShape(im.Height, im.Width, im.Channels),
		tensor.WithBacking(backing),
	)
}

// FromMap copies the map into a float32 dense tensor of shape (H, W).
func FromMap(m *haze.Map) *tensor.Dense {
	backing := append([]float32(nil), m.Data...)
	return tensor.New(
		tensor.WithShape(m.Height, m.Width),
		tensor.WithBacking(backing),
	)
}

// ToImage copies a float32 (H, W, 3) tensor into an Image.
//
// Arguments:
// - t: The source tensor. Views are materialized first.
// - maxValue: The nominal top of the sample range of t.
//
// Returns:
// - The image, or an error wrapping haze.ErrInvalidArgument for a wrong dtype or shape.
func ToImage(t *tensor.Dense, maxValue float32) (*haze.Image, error) {
	if t == nil {
		return nil, errors.Wrap(haze.ErrInvalidArgument, "tensor is nil")
	}
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Wrapf(haze.ErrInvalidArgument, "tensor dtype %v, want float32", t.Dtype())
	}
	shape := t.Shape()
	if len(shape) != 3 || shape[2] != haze.Channels {
		return nil, errors.Wrapf(haze.ErrInvalidArgument, "tensor shape %v, want (H, W, %d)", shape, haze.Channels)
	}
	if t.IsView() {
		m, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return nil, errors.Wrap(haze.ErrInvalidArgument, "tensor view could not be materialized")
		}
		t = m
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Wrapf(haze.ErrInvalidArgument, "tensor backing is %T, want []float32", t.Data())
	}
	return haze.NewImageFromSlice(shape[1], shape[0], haze.Channels, maxValue, append([]float32(nil), data...))
}
