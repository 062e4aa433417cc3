// Package haze - Dark Channel Prior haze estimation and removal.
//
// The package exposes the four numeric stages of the method (DarkChannel,
// AtmosphericLight, Transmission and RecoverRadiance) plus a relative depth
// estimate. Every stage is a pure function: it validates its inputs, allocates
// a fresh output and never mutates its arguments.
package haze

// Channels is the number of samples per pixel every transform expects.
const Channels = 3

// Image is a dense height x width x channels array of samples, stored
// interleaved (HWC) in row-major order.
type Image struct {
	// Width of the image in pixels.
	Width int `json:"width" yaml:"width"`
	// Height of the image in pixels.
	Height int `json:"height" yaml:"height"`
	// Channels per pixel. The transforms require exactly 3; channel order is
	// whatever the caller uses consistently.
	Channels int `json:"channels" yaml:"channels"`
	// MaxValue is the nominal top of the sample range: 255 for 8-bit input,
	// 1 for normalized input. RecoverRadiance divides by it to reach [0,1].
	MaxValue float32 `json:"max_value" yaml:"max_value"`
	// Pix holds Width*Height*Channels samples.
	Pix []float32 `json:"-" yaml:"-"`
}

// NewImage allocates a zeroed 3-channel image with samples normalized to [0,1].
func NewImage(width, height int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: Channels,
		MaxValue: 1,
		Pix:      make([]float32, width*height*Channels),
	}
}

// NewImageFromSlice wraps pix as an image without copying.
//
// Arguments:
// - width, height: The spatial extent.
// - channels: Samples per pixel.
// - maxValue: The nominal top of the sample range (255, 1, ...).
// - pix: Interleaved samples, len(pix) must equal width*height*channels.
//
// Returns:
// - The image, or an error if the slice length does not match the shape.
func NewImageFromSlice(width, height, channels int, maxValue float32, pix []float32) (*Image, error) {
	if width < 0 || height < 0 || channels < 0 {
		return nil, invalidf("negative image shape %dx%dx%d", height, width, channels)
	}
	if len(pix) != width*height*channels {
		return nil, invalidf("sample count %d does not match shape %dx%dx%d", len(pix), height, width, channels)
	}
	return &Image{Width: width, Height: height, Channels: channels, MaxValue: maxValue, Pix: pix}, nil
}

// At returns sample c of pixel (x, y).
func (im *Image) At(x, y, c int) float32 {
	return im.Pix[(y*im.Width+x)*im.Channels+c]
}

// Set writes sample c of pixel (x, y).
func (im *Image) Set(x, y, c int, v float32) {
	im.Pix[(y*im.Width+x)*im.Channels+c] = v
}

// SetRGB writes all three samples of pixel (x, y).
func (im *Image) SetRGB(x, y int, c0, c1, c2 float32) {
	off := (y*im.Width + x) * im.Channels
	im.Pix[off] = c0
	im.Pix[off+1] = c1
	im.Pix[off+2] = c2
}

// Clone returns a deep copy of the image.
func (im *Image) Clone() *Image {
	out := *im
	out.Pix = append([]float32(nil), im.Pix...)
	return &out
}

// validate checks the invariants every transform relies on.
func (im *Image) validate() error {
	if im == nil {
		return invalidf("image is nil")
	}
	if im.Channels != Channels {
		return invalidf("image has %d channels, want %d", im.Channels, Channels)
	}
	if im.Width <= 0 || im.Height <= 0 {
		return invalidf("image has zero extent %dx%d", im.Width, im.Height)
	}
	if len(im.Pix) != im.Width*im.Height*im.Channels {
		return invalidf("image holds %d samples, shape %dx%dx%d needs %d",
			len(im.Pix), im.Height, im.Width, im.Channels, im.Width*im.Height*im.Channels)
	}
	return nil
}

// Map is a dense height x width single-channel array in row-major order. It
// carries the dark channel, the transmission map and the depth map.
type Map struct {
	// Width of the map in pixels.
	Width int `json:"width" yaml:"width"`
	// Height of the map in pixels.
	Height int `json:"height" yaml:"height"`
	// Data holds Width*Height values.
	Data []float32 `json:"-" yaml:"-"`
}

// NewMap allocates a zeroed map.
func NewMap(width, height int) *Map {
	return &Map{Width: width, Height: height, Data: make([]float32, width*height)}
}

// NewMapFromSlice wraps data as a map without copying.
func NewMapFromSlice(width, height int, data []float32) (*Map, error) {
	if width < 0 || height < 0 {
		return nil, invalidf("negative map shape %dx%d", height, width)
	}
	if len(data) != width*height {
		return nil, invalidf("value count %d does not match shape %dx%d", len(data), height, width)
	}
	return &Map{Width: width, Height: height, Data: data}, nil
}

// At returns the value at (x, y).
func (m *Map) At(x, y int) float32 {
	return m.Data[y*m.Width+x]
}

// Set writes the value at (x, y).
func (m *Map) Set(x, y int, v float32) {
	m.Data[y*m.Width+x] = v
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	out := *m
	out.Data = append([]float32(nil), m.Data...)
	return &out
}

func (m *Map) validate(name string) error {
	if m == nil {
		return invalidf("%s map is nil", name)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return invalidf("%s map has zero extent %dx%d", name, m.Width, m.Height)
	}
	if len(m.Data) != m.Width*m.Height {
		return invalidf("%s map holds %d values, shape %dx%d needs %d",
			name, len(m.Data), m.Height, m.Width, m.Width*m.Height)
	}
	return nil
}

// sameExtent fails unless the image and the map cover the same pixels.
func sameExtent(im *Image, m *Map, name string) error {
	if im.Width != m.Width || im.Height != m.Height {
		return invalidf("%s map is %dx%d, image is %dx%d",
			name, m.Height, m.Width, im.Height, im.Width)
	}
	return nil
}

// Airlight is the per-channel atmospheric light estimate, in the sample
// scale of the image it was estimated from.
type Airlight [Channels]float32
