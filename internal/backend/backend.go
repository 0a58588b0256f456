// Package backend declares the capabilities a render session consumes from a
// windowing and graphics system. Concrete adapters live in
// internal/backend/soft (headless) and internal/display (Ebitengine).
package backend

import (
	"image"
	"image/color"

	"github.com/junsooki/pixwin/internal/event"
	"github.com/junsooki/pixwin/internal/shape"
)

// Texture is an uploaded image that can be copied onto the display.
type Texture interface {
	Size() (w, h uint32)
	// SetColorMod tints every subsequent copy of the texture.
	// White leaves it unchanged.
	SetColorMod(c color.RGBA)
}

// TextureCreator uploads decoded images.
type TextureCreator interface {
	CreateTexture(img image.Image) (Texture, error)
}

// Graphics is a drawing surface with an implicit draw color.
type Graphics interface {
	TextureCreator

	// Present shows everything drawn since the previous Present.
	Present()
	// SetDrawColor takes straight (non-premultiplied) components; alpha
	// blends over what is already drawn.
	SetDrawColor(c color.RGBA)
	// Clear fills the whole surface with the draw color.
	Clear()
	DrawRect(r shape.Rect) error
	FillRect(r shape.Rect) error
	DrawPoint(p shape.Point) error
	DrawPoints(pts []shape.Point) error
	// Copy draws the src portion of t (all of it when src is nil) scaled
	// into dst.
	Copy(t Texture, src *shape.Rect, dst shape.Rect) error
	Size() (w, h int)
}

// EventSource reports raw input.
type EventSource interface {
	// PollEvent returns the next pending native event without blocking.
	PollEvent() (event.Native, bool)
	IsKeyPressed(k event.Key) bool
	IsMouseButtonPressed(b event.MouseButton) bool
	MousePosition() (x, y int32)
}

// Backend combines a drawing surface with its input source.
type Backend interface {
	Graphics
	EventSource
}

// OpenFunc creates a backend for a window titled title.
type OpenFunc func(title string, width, height int) (Backend, error)

// DisplayBounder is implemented by backends that know the size of the
// physical display.
type DisplayBounder interface {
	DisplayBounds() (w, h int, err error)
}
