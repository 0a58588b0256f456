package font

import (
	"image"
	"image/color"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/junsooki/pixwin/internal/backend"
)

// DefaultAlphabet lists the runes of the built-in font, in band order.
const DefaultAlphabet = " abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789.,!?-+/():;%&`'*#=[]\""

// DefaultBorder is the separator color of the built-in font image.
var DefaultBorder = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

// DefaultImage renders DefaultAlphabet with basicfont.Face7x13 in the
// bitmap-font layout: one border column, then a band per rune followed by
// another border column. Ink is white on transparent so the draw color can
// tint it.
func DefaultImage() *image.NRGBA {
	face := basicfont.Face7x13
	runes := []rune(DefaultAlphabet)
	band := face.Advance
	width := 1 + len(runes)*(band+1)
	img := image.NewNRGBA(image.Rect(0, 0, width, face.Height))

	d := &xfont.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	for i, r := range runes {
		d.Dot = fixed.P(1+i*(band+1), face.Ascent)
		d.DrawString(string(r))
	}

	// Borders go last so no glyph overhang can break a separator.
	for x := 0; x < width; x += band + 1 {
		for y := 0; y < face.Height; y++ {
			img.SetNRGBA(x, y, DefaultBorder)
		}
	}
	return img
}

// Default builds the built-in font.
func Default(tc backend.TextureCreator) (*Font, error) {
	return FromImage(DefaultImage(), DefaultAlphabet, tc)
}
