package session

import (
	"fmt"
	"image/color"

	"github.com/junsooki/pixwin/internal/backend"
	"github.com/junsooki/pixwin/internal/shape"
)

// MissingGlyphAdvance is how far Print moves the cursor for a rune the font
// cannot draw.
const MissingGlyphAdvance = 5

// Image is an uploaded picture. It has no methods that modify its contents.
type Image struct {
	texture backend.Texture
	width   uint32
	height  uint32
}

func (img *Image) Width() uint32  { return img.width }
func (img *Image) Height() uint32 { return img.height }

// SetColor sets the foreground color. It applies to every later draw
// operation, including images and text, which it tints; white
// (255, 255, 255, 255) leaves them unchanged.
func (w *Window) SetColor(r, g, b, a uint8) {
	w.style.foreground = color.RGBA{R: r, G: g, B: b, A: a}
}

// Color returns the foreground color.
func (w *Window) Color() color.RGBA {
	return w.style.foreground
}

// applyStyle pushes the window style to the backend.
func (w *Window) applyStyle() {
	w.gfx.SetDrawColor(w.style.foreground)
}

// check fails fast on a backend error unless a handler was installed.
func (w *Window) check(op string, err error) {
	if err == nil {
		return
	}
	err = fmt.Errorf("session: %s: %w", op, err)
	if w.onErr != nil {
		w.onErr(err)
		return
	}
	panic(err)
}

func (w *Window) DrawRect(r shape.Rect) {
	w.applyStyle()
	w.check("draw rect", w.gfx.DrawRect(r))
}

func (w *Window) FillRect(r shape.Rect) {
	w.applyStyle()
	w.check("fill rect", w.gfx.FillRect(r))
}

func (w *Window) DrawPoint(p shape.Point) {
	w.applyStyle()
	w.check("draw point", w.gfx.DrawPoint(p))
}

// DrawPolygon plots the polygon's vertices.
func (w *Window) DrawPolygon(p shape.Polygon) {
	w.applyStyle()
	w.check("draw polygon", w.gfx.DrawPoints(p))
}

// DrawImage draws img with its top-left corner at (x, y), tinted by the
// foreground color.
func (w *Window) DrawImage(img *Image, x, y int32) {
	w.applyStyle()
	img.texture.SetColorMod(w.style.foreground)
	dst := shape.NewRect(x, y, img.width, img.height)
	w.check("draw image", w.gfx.Copy(img.texture, nil, dst))
}

// Print writes text at (x, y) with the active font, left to right on one
// line, and returns the area it covers. Runes the font lacks leave a
// MissingGlyphAdvance gap.
func (w *Window) Print(text string, x, y int32) shape.Rect {
	w.applyStyle()
	f := w.font
	if f == nil {
		panic(fmt.Errorf("session: Print: %w", ErrNoFont))
	}
	tex := f.Texture()
	tex.SetColorMod(w.style.foreground)

	cx := x
	for _, r := range text {
		src, ok := f.Glyph(r)
		if !ok {
			cx += MissingGlyphAdvance
			continue
		}
		dst := shape.NewRect(cx, y, src.W, src.H)
		w.check("print", w.gfx.Copy(tex, &src, dst))
		cx += int32(src.W)
	}

	return shape.NewRect(x, y, uint32(cx-x), f.Height())
}

// Clear fills the screen with black. The foreground color is unchanged.
func (w *Window) Clear() {
	w.ClearToColor(0, 0, 0)
}

// ClearToColor fills the screen with an opaque color. The foreground color
// is unchanged.
func (w *Window) ClearToColor(r, g, b uint8) {
	w.gfx.SetDrawColor(color.RGBA{R: r, G: g, B: b, A: 255})
	w.gfx.Clear()
}
