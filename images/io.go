package images

import (
	"image"
	"os"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-dehaze/haze"
)

// Load decodes the image file at path into an RGB haze.Image on the 8-bit
// scale. WebP goes through chai2010/webp, everything else through OpenCV.
func Load(path string) (*haze.Image, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	if format == FormatWebP {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open image")
		}
		defer f.Close()
		img, err := webp.Decode(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s", path)
		}
		return FromImage(img), nil
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.Errorf("failed to read image %s", path)
	}
	im, err := FromMat(mat)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert %s", path)
	}
	return im, nil
}

// Save encodes img to path in the format given by its extension.
//
// Arguments:
// - path: Destination file; the extension selects the encoder.
// - img: The image to write. *image.Gray is written as a single channel.
//
// Returns:
// - An error if the format is unsupported or encoding fails.
func Save(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if format == FormatWebP {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		if err := webp.Encode(f, img, &webp.Options{Lossless: true}); err != nil {
			f.Close()
			return errors.Wrapf(err, "failed to encode %s", path)
		}
		return errors.Wrap(f.Close(), "failed to close output file")
	}

	var mat gocv.Mat
	if gray, ok := img.(*image.Gray); ok {
		mat, err = gocv.ImageGrayToMatGray(gray)
	} else {
		mat, err = gocv.ImageToMatRGB(img)
	}
	if err != nil {
		return errors.Wrap(err, "failed to convert image to mat")
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return errors.Errorf("failed to write image %s", path)
	}
	return nil
}
