package encoder

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// Encoder encodes a frame into bytes.
type Encoder interface {
	Encode(img *image.RGBA) ([]byte, error)
	SetQuality(quality int)
}

// ForPath picks an encoder from the file extension of path. Quality only
// applies to JPEG.
func ForPath(path string, quality int) (Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return NewJPEGEncoder(quality), nil
	case ".png":
		return NewPNGEncoder(), nil
	default:
		return nil, fmt.Errorf("encoder: no encoder for %q", path)
	}
}
