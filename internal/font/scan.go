package font

import (
	"errors"
	"fmt"
	"image"

	"github.com/junsooki/pixwin/internal/imagedec"
	"github.com/junsooki/pixwin/internal/shape"
)

// ErrDuplicateAlphabetChar is returned when an alphabet lists a rune twice.
var ErrDuplicateAlphabetChar = errors.New("alphabet has duplicate characters")

// PackPixel packs non-premultiplied 8-bit components into one comparable
// value.
func PackPixel(r, g, b, a uint8) uint32 {
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a)
}

// PackPixels flattens img into a row-major buffer of packed pixels.
func PackPixels(img image.Image) (pixels []uint32, width, height int) {
	n := imagedec.ToNRGBA(img)
	b := n.Bounds()
	width, height = b.Dx(), b.Dy()
	pixels = make([]uint32, 0, width*height)
	for y := 0; y < height; y++ {
		row := n.Pix[y*n.Stride : y*n.Stride+width*4]
		for x := 0; x < len(row); x += 4 {
			pixels = append(pixels, PackPixel(row[x], row[x+1], row[x+2], row[x+3]))
		}
	}
	return pixels, width, height
}

// checkAlphabet returns the runes of alphabet, failing on duplicates.
func checkAlphabet(alphabet string) ([]rune, error) {
	runes := []rune(alphabet)
	seen := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		if _, ok := seen[r]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAlphabetChar, r)
		}
		seen[r] = struct{}{}
	}
	return runes, nil
}

// scanner is the open/closed region state machine.
type scanner struct {
	alphabet []rune
	height   uint32
	glyphs   map[rune]shape.Rect

	open  bool
	start int
}

// step feeds the pixel at index i. It returns false once the alphabet is
// exhausted and scanning should stop.
func (s *scanner) step(i int, isBorder bool) bool {
	switch {
	case isBorder && s.open:
		if len(s.glyphs) == len(s.alphabet) {
			return false
		}
		s.glyphs[s.alphabet[len(s.glyphs)]] = shape.Rect{
			X: int32(s.start),
			Y: 0,
			W: uint32(i - s.start),
			H: s.height,
		}
		s.open = false
	case !isBorder && !s.open:
		s.open = true
		s.start = i
	}
	return true
}

func newScanner(alphabet string, height int) (*scanner, error) {
	runes, err := checkAlphabet(alphabet)
	if err != nil {
		return nil, err
	}
	return &scanner{
		alphabet: runes,
		height:   uint32(height),
		glyphs:   make(map[rune]shape.Rect, len(runes)),
	}, nil
}

// Extract partitions a bitmap-font image into glyph rectangles.
//
// The first pixel is the border color. The buffer is walked once as a flat
// strip: a run of non-border pixels closed by a border pixel becomes the
// rectangle of the next alphabet rune, spanning the full image height.
// Scanning stops when the alphabet runs out; a trailing run with no closing
// border is dropped. Glyph X positions are flat buffer indices, so only the
// first row of a multi-row image maps to real columns (see ExtractRow).
func Extract(pixels []uint32, width, height int, alphabet string) (map[rune]shape.Rect, error) {
	s, err := newScanner(alphabet, height)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || len(pixels) == 0 || len(s.alphabet) == 0 {
		return s.glyphs, nil
	}
	border := pixels[0]
	for i, p := range pixels {
		if !s.step(i, p == border) {
			break
		}
	}
	return s.glyphs, nil
}

// ExtractRow is Extract restricted to the top row, so every glyph X is a
// real column and nothing below the first row can produce a glyph.
func ExtractRow(pixels []uint32, width, height int, alphabet string) (map[rune]shape.Rect, error) {
	if width > 0 && len(pixels) > width {
		pixels = pixels[:width]
	}
	return Extract(pixels, width, height, alphabet)
}
