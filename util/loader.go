package util

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-dehaze/images"
)

// ImageFile represents an image file found in a directory.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Stem is the file name without extension.
	Stem string
	// Frame is the trailing number of the stem (frame-12.png -> 12), or -1.
	Frame int
}

// ListImageFiles returns the image files of dir, not recursing into
// subdirectories. Files are ordered by stem prefix, then by trailing frame
// number (frame-2 before frame-10), then by path.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The image files in processing order.
// - error: Error if the directory cannot be read.
func ListImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !isImageExtension(ext) {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), ext)
		files = append(files, ImageFile{
			Path:  filepath.Join(dir, entry.Name()),
			Stem:  stem,
			Frame: trailingNumber(stem),
		})
	}

	slices.SortFunc(files, func(a, b ImageFile) int {
		return cmp.Or(
			strings.Compare(framePrefix(a), framePrefix(b)),
			cmp.Compare(a.Frame, b.Frame),
			strings.Compare(a.Path, b.Path),
		)
	})
	return files, nil
}

func isImageExtension(ext string) bool {
	return slices.Contains(images.SupportedExtensions, strings.ToLower(ext))
}

// trailingNumber parses the decimal digits ending s, or returns -1.
func trailingNumber(s string) int {
	i := len(s)
	for i > 0 && unicode.IsDigit(rune(s[i-1])) {
		i--
	}
	if i == len(s) {
		return -1
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return -1
	}
	return n
}

// framePrefix is the stem with its trailing frame number removed.
func framePrefix(f ImageFile) string {
	if f.Frame < 0 {
		return f.Stem
	}
	return strings.TrimRightFunc(f.Stem, unicode.IsDigit)
}
