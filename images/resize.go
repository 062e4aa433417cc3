package images

import (
	"image"
	"strings"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ResolutionPixels describes the exact dimensions of a resolution.
type ResolutionPixels struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// resolutions maps the working resolution names accepted on the command line
// to their bounding boxes.
var resolutions = map[string]ResolutionPixels{
	"360p":  {Width: 640, Height: 360},
	"480p":  {Width: 854, Height: 480},
	"540p":  {Width: 960, Height: 540},
	"720p":  {Width: 1280, Height: 720},
	"1080p": {Width: 1920, Height: 1080},
	"1440p": {Width: 2560, Height: 1440},
	"4k":    {Width: 3840, Height: 2160},
}

// ParseResolution resolves a working resolution name such as "720p" or "4K".
func ParseResolution(name string) (ResolutionPixels, error) {
	res, ok := resolutions[strings.ToLower(name)]
	if !ok {
		return ResolutionPixels{}, errors.Errorf("unknown resolution %q", name)
	}
	return res, nil
}

// Fits reports whether a width x height image fits inside r in either
// orientation.
func (r ResolutionPixels) Fits(width, height int) bool {
	long, short := max(width, height), min(width, height)
	return long <= max(r.Width, r.Height) && short <= min(r.Width, r.Height)
}

// Downscale shrinks src with Lanczos3 so it fits inside r in either
// orientation, preserving the aspect ratio. Images that already fit are
// returned unchanged; nothing is ever upscaled.
//
// Dehazing cost grows with pixel count and the airlight estimate is stable
// under downsampling, so large camera frames are often processed at a working
// resolution.
func Downscale(src image.Image, r ResolutionPixels) image.Image {
	b := src.Bounds()
	if r.Width <= 0 || r.Height <= 0 || r.Fits(b.Dx(), b.Dy()) {
		return src
	}
	maxW, maxH := r.Width, r.Height
	if (b.Dx() >= b.Dy()) != (r.Width >= r.Height) {
		maxW, maxH = r.Height, r.Width
	}
	return resize.Thumbnail(uint(maxW), uint(maxH), src, resize.Lanczos3)
}
