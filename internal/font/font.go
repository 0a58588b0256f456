// Package font loads bitmap fonts from specially laid out images.
//
// A font image is a single strip: its first pixel is the border color, and
// each vertical band of non-border pixels between two border columns is one
// glyph. Bands are bound left to right to the runes of an alphabet string.
// Every glyph spans the full image height, so the font height is fixed by
// the image.
package font

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/junsooki/pixwin/internal/backend"
	"github.com/junsooki/pixwin/internal/imagedec"
	"github.com/junsooki/pixwin/internal/shape"
)

// ErrInvalidGlyph is returned by New for a glyph rectangle that breaks the
// table invariants.
var ErrInvalidGlyph = errors.New("invalid glyph rectangle")

// Font maps runes to regions of a texture. It is immutable.
type Font struct {
	texture backend.Texture
	glyphs  map[rune]shape.Rect
	height  uint32
}

// New builds a Font from extracted glyph rectangles. Every rectangle must
// have a positive width and the given height.
func New(glyphs map[rune]shape.Rect, height uint32, texture backend.Texture) (*Font, error) {
	own := make(map[rune]shape.Rect, len(glyphs))
	for r, rect := range glyphs {
		if rect.W == 0 || rect.H != height || rect.X < 0 {
			return nil, fmt.Errorf("%w: %q %+v (font height %d)", ErrInvalidGlyph, r, rect, height)
		}
		own[r] = rect
	}
	return &Font{texture: texture, glyphs: own, height: height}, nil
}

// HasGlyph reports whether r can be drawn with this font.
func (f *Font) HasGlyph(r rune) bool {
	_, ok := f.glyphs[r]
	return ok
}

// Len returns the number of printable runes.
func (f *Font) Len() int {
	return len(f.glyphs)
}

// IsEmpty reports whether the font has no glyphs at all.
func (f *Font) IsEmpty() bool {
	return len(f.glyphs) == 0
}

// Height is shared by every glyph. Individual glyphs may leave part of it
// blank but never exceed it.
func (f *Font) Height() uint32 {
	return f.height
}

// Glyph returns the texture region used to draw r.
func (f *Font) Glyph(r rune) (shape.Rect, bool) {
	rect, ok := f.glyphs[r]
	return rect, ok
}

// Texture returns the backing texture.
func (f *Font) Texture() backend.Texture {
	return f.texture
}

// Runes returns the printable runes in ascending order.
func (f *Font) Runes() []rune {
	runes := make([]rune, 0, len(f.glyphs))
	for r := range f.glyphs {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return runes
}

// Measure returns how far text advances the cursor when printed, using
// missing as the advance for runes the font lacks.
func (f *Font) Measure(text string, missing int32) int32 {
	var w int32
	for _, r := range text {
		if rect, ok := f.glyphs[r]; ok {
			w += int32(rect.W)
		} else {
			w += missing
		}
	}
	return w
}

type loadOptions struct {
	rowScan bool
}

// LoadOption customizes font loading.
type LoadOption func(*loadOptions)

// WithRowScan scans only the top row of the image for glyph borders. See
// ExtractRow.
func WithRowScan() LoadOption {
	return func(o *loadOptions) { o.rowScan = true }
}

// FromImage extracts glyphs from img and uploads it as the font texture.
func FromImage(img image.Image, alphabet string, tc backend.TextureCreator, opts ...LoadOption) (*Font, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	pixels, w, h := PackPixels(img)
	extract := Extract
	if o.rowScan {
		extract = ExtractRow
	}
	glyphs, err := extract(pixels, w, h, alphabet)
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}

	tex, err := tc.CreateTexture(img)
	if err != nil {
		return nil, fmt.Errorf("font: create texture: %w", err)
	}
	_, texH := tex.Size()
	return New(glyphs, texH, tex)
}

// Load decodes a font image from memory.
func Load(data []byte, alphabet string, tc backend.TextureCreator, opts ...LoadOption) (*Font, error) {
	// Reject a bad alphabet before paying for the decode.
	if _, err := checkAlphabet(alphabet); err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	img, err := imagedec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("font: decode: %w", err)
	}
	return FromImage(img, alphabet, tc, opts...)
}

// LoadFile decodes the font image at path.
func LoadFile(path, alphabet string, tc backend.TextureCreator, opts ...LoadOption) (*Font, error) {
	if _, err := checkAlphabet(alphabet); err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	img, err := imagedec.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("font: decode: %w", err)
	}
	return FromImage(img, alphabet, tc, opts...)
}
