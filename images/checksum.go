package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/nvr-ai/go-dehaze/haze"
)

// Checksum generates a deterministic checksum of an image's shape and samples,
// used to verify that repeated runs reproduce the same output.
//
// Arguments:
// - im: The image to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
//
// Example:
//
// ```go
//
//	sum := Checksum(res.Radiance)
//	fmt.Printf("Radiance checksum: %s\n", sum)
//
// ```
func Checksum(im *haze.Image) string {
	if im == nil || len(im.Pix) == 0 {
		return "empty"
	}

	hash := md5.New()
	var header [16]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(im.Width))
	binary.LittleEndian.PutUint32(header[4:], uint32(im.Height))
	binary.LittleEndian.PutUint32(header[8:], uint32(im.Channels))
	binary.LittleEndian.PutUint32(header[12:], math.Float32bits(im.MaxValue))
	hash.Write(header[:])

	buf := make([]byte, 4*len(im.Pix))
	for i, v := range im.Pix {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	hash.Write(buf)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
