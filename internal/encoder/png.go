package encoder

import (
	"bytes"
	"image"
	"image/png"
)

// PNGEncoder encodes frames losslessly. Snapshots of pixel fonts should
// use it; JPEG smears single-pixel edges.
type PNGEncoder struct {
	enc png.Encoder
}

func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{enc: png.Encoder{CompressionLevel: png.DefaultCompression}}
}

// SetQuality maps 1-100 onto PNG compression: higher quality spends less
// time compressing.
func (e *PNGEncoder) SetQuality(quality int) {
	switch {
	case quality >= 90:
		e.enc.CompressionLevel = png.BestSpeed
	case quality <= 10:
		e.enc.CompressionLevel = png.BestCompression
	default:
		e.enc.CompressionLevel = png.DefaultCompression
	}
}

func (e *PNGEncoder) Encode(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
