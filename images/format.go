package images

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatBMP is the BMP image format.
	FormatBMP ImageFormat = "bmp"
)

// SupportedExtensions lists the file extensions Load and Save understand.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp"}

// FormatFromPath infers the image format from a file extension.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return "", errors.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
}
