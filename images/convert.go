// Package images - conversion and I/O between encoded images, gocv Mats and
// the float32 sample arrays of the haze package.
package images

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-dehaze/haze"
)

// FromImage converts src to an RGB haze.Image on the 8-bit scale (MaxValue
// 255). Alpha is dropped.
//
// Arguments:
// - src: Any decoded image.
//
// Returns:
// - The 3-channel image, origin moved to (0, 0).
func FromImage(src image.Image) *haze.Image {
	b := src.Bounds()
	im := haze.NewImage(b.Dx(), b.Dy())
	im.MaxValue = 255

	// Fast path: straight byte access for non-premultiplied RGBA layouts.
	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < im.Height; y++ {
			start := n.PixOffset(b.Min.X, b.Min.Y+y)
			row := n.Pix[start : start+im.Width*4]
			for x := 0; x < im.Width; x++ {
				p := row[x*4 : x*4+3 : x*4+3]
				im.SetRGB(x, y, float32(p[0]), float32(p[1]), float32(p[2]))
			}
		}
		return im
	}

	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			im.SetRGB(x, y, float32(c.R), float32(c.G), float32(c.B))
		}
	}
	return im
}

// ToRGBA renders im as an opaque *image.RGBA. Samples are mapped from
// [0, MaxValue] to [0, 255]; values outside that range saturate.
func ToRGBA(im *haze.Image) (*image.RGBA, error) {
	if err := checkImage(im); err != nil {
		return nil, err
	}
	scale := 255 / im.MaxValue
	dst := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))
	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			off := y*dst.Stride + x*4
			dst.Pix[off+0] = toByte(im.At(x, y, 0) * scale)
			dst.Pix[off+1] = toByte(im.At(x, y, 1) * scale)
			dst.Pix[off+2] = toByte(im.At(x, y, 2) * scale)
			dst.Pix[off+3] = 255
		}
	}
	return dst, nil
}

// MapToGray renders m as an 8-bit grayscale image, mapping [lo, hi] to
// [0, 255] with saturation outside the range.
func MapToGray(m *haze.Map, lo, hi float32) (*image.Gray, error) {
	if m == nil || len(m.Data) != m.Width*m.Height {
		return nil, errors.Wrap(haze.ErrInvalidArgument, "map is nil or malformed")
	}
	if !(hi > lo) {
		return nil, errors.Wrapf(haze.ErrInvalidArgument, "gray range [%v, %v] is empty", lo, hi)
	}
	scale := 255 / (hi - lo)
	dst := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			dst.Pix[y*dst.Stride+x] = toByte((m.At(x, y) - lo) * scale)
		}
	}
	return dst, nil
}

// MapToGrayAuto renders m stretched between its own minimum and maximum. A
// constant map renders black.
func MapToGrayAuto(m *haze.Map) (*image.Gray, error) {
	if m == nil || len(m.Data) == 0 {
		return nil, errors.Wrap(haze.ErrInvalidArgument, "map is nil or empty")
	}
	lo, hi := m.Data[0], m.Data[0]
	for _, v := range m.Data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return MapToGray(m, lo, hi)
}

// FromMat converts an 8-bit, 3-channel BGR Mat (the gocv.IMRead layout) into
// an RGB haze.Image on the 8-bit scale.
func FromMat(mat gocv.Mat) (*haze.Image, error) {
	if mat.Empty() {
		return nil, errors.New("mat is empty")
	}
	if mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, errors.Errorf("mat type %v, want 8-bit 3-channel", mat.Type())
	}
	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}
	data, err := src.DataPtrUint8()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access mat data")
	}

	im := haze.NewImage(src.Cols(), src.Rows())
	im.MaxValue = 255
	for i := 0; i < im.Width*im.Height; i++ {
		bgr := data[i*3 : i*3+3 : i*3+3]
		im.Pix[i*3+0] = float32(bgr[2])
		im.Pix[i*3+1] = float32(bgr[1])
		im.Pix[i*3+2] = float32(bgr[0])
	}
	return im, nil
}

// ToMat renders im as an 8-bit BGR Mat. The caller must Close it.
func ToMat(im *haze.Image) (gocv.Mat, error) {
	if err := checkImage(im); err != nil {
		return gocv.NewMat(), err
	}
	scale := 255 / im.MaxValue
	data := make([]byte, im.Width*im.Height*3)
	for i := 0; i < im.Width*im.Height; i++ {
		data[i*3+0] = toByte(im.Pix[i*3+2] * scale)
		data[i*3+1] = toByte(im.Pix[i*3+1] * scale)
		data[i*3+2] = toByte(im.Pix[i*3+0] * scale)
	}
	mat, err := gocv.NewMatFromBytes(im.Height, im.Width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to build mat")
	}
	return mat, nil
}

func checkImage(im *haze.Image) error {
	if im == nil {
		return errors.Wrap(haze.ErrInvalidArgument, "image is nil")
	}
	if im.Channels != haze.Channels || len(im.Pix) != im.Width*im.Height*im.Channels {
		return errors.Wrapf(haze.ErrInvalidArgument, "image shape %dx%dx%d does not hold %d samples",
			im.Height, im.Width, im.Channels, len(im.Pix))
	}
	if !(im.MaxValue > 0) {
		return errors.Wrapf(haze.ErrInvalidArgument, "image max value %v must be > 0", im.MaxValue)
	}
	return nil
}

// toByte rounds and saturates v to [0, 255]. NaN maps to 0.
func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(float64(v)))
}
