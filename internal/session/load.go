package session

import (
	"fmt"
	"image"

	"github.com/junsooki/pixwin/internal/font"
	"github.com/junsooki/pixwin/internal/imagedec"
)

func (w *Window) newImage(img image.Image) (*Image, error) {
	tex, err := w.gfx.CreateTexture(img)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	width, height := tex.Size()
	return &Image{texture: tex, width: width, height: height}, nil
}

// LoadImage decodes an image from memory. Combined with go:embed this packs
// game assets into the executable.
func (w *Window) LoadImage(data []byte) (*Image, error) {
	img, err := imagedec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	return w.newImage(img)
}

// LoadImageFromFile decodes the image at path.
func (w *Window) LoadImageFromFile(path string) (*Image, error) {
	img, err := imagedec.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	return w.newImage(img)
}

// LoadFont builds a font from an image in memory. See package font for the
// image layout. The font is not activated; pass it to SetFont.
func (w *Window) LoadFont(data []byte, alphabet string, opts ...font.LoadOption) (*font.Font, error) {
	return font.Load(data, alphabet, w.gfx, opts...)
}

// LoadFontFromFile builds a font from the image at path.
func (w *Window) LoadFontFromFile(path, alphabet string, opts ...font.LoadOption) (*font.Font, error) {
	return font.LoadFile(path, alphabet, w.gfx, opts...)
}
