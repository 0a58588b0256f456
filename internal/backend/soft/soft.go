// Package soft is a headless backend that renders into an in-memory
// *image.RGBA. It is used for tests, snapshots and remote mirroring.
package soft

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"

	"github.com/junsooki/pixwin/internal/backend"
	"github.com/junsooki/pixwin/internal/event"
	"github.com/junsooki/pixwin/internal/shape"
)

// ErrForeignTexture is returned when copying a texture made by another
// backend.
var ErrForeignTexture = errors.New("texture was not created by this backend")

// Texture is an uploaded image.
type Texture struct {
	img *image.NRGBA
	mod color.RGBA
}

func (t *Texture) Size() (uint32, uint32) {
	b := t.img.Bounds()
	return uint32(b.Dx()), uint32(b.Dy())
}

func (t *Texture) SetColorMod(c color.RGBA) {
	t.mod = c
}

// ColorMod returns the current tint.
func (t *Texture) ColorMod() color.RGBA {
	return t.mod
}

// CopyCall records one Copy for inspection.
type CopyCall struct {
	Texture *Texture
	Src     shape.Rect
	Dst     shape.Rect
	Mod     color.RGBA
}

// Backend draws into a back buffer and publishes it on Present.
type Backend struct {
	*Events

	back  *image.RGBA
	front *image.RGBA
	// Straight alpha; image.Uniform premultiplies when drawing.
	color color.NRGBA

	presents int
	copies   []CopyCall
	onFrame  []func(*image.RGBA)
}

// New creates a headless backend of the given size.
func New(width, height int) *Backend {
	r := image.Rect(0, 0, width, height)
	return &Backend{
		Events: NewEvents(),
		back:   image.NewRGBA(r),
		front:  image.NewRGBA(r),
		color:  color.NRGBA{A: 255},
	}
}

// Open is a backend.OpenFunc for headless sessions.
func Open(_ string, width, height int) (backend.Backend, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("soft: window size must be positive")
	}
	return New(width, height), nil
}

// OnFrame registers fn to receive a copy of every presented frame. fn runs on
// the presenting goroutine and owns the image it is given.
func (b *Backend) OnFrame(fn func(*image.RGBA)) {
	b.onFrame = append(b.onFrame, fn)
}

// Frame returns the last presented frame. The image is reused by the next
// Present.
func (b *Backend) Frame() *image.RGBA {
	return b.front
}

// Presents returns how many times Present was called.
func (b *Backend) Presents() int {
	return b.presents
}

// Copies returns every Copy since the last Present or ResetCopies.
func (b *Backend) Copies() []CopyCall {
	return b.copies
}

func (b *Backend) ResetCopies() {
	b.copies = nil
}

func (b *Backend) Size() (int, int) {
	r := b.back.Bounds()
	return r.Dx(), r.Dy()
}

func (b *Backend) Present() {
	b.presents++
	b.copies = nil
	copy(b.front.Pix, b.back.Pix)
	for _, fn := range b.onFrame {
		frame := image.NewRGBA(b.front.Bounds())
		copy(frame.Pix, b.front.Pix)
		fn(frame)
	}
}

func (b *Backend) SetDrawColor(c color.RGBA) {
	b.color = color.NRGBA(c)
}

func (b *Backend) Clear() {
	draw.Draw(b.back, b.back.Bounds(), image.NewUniform(b.color), image.Point{}, draw.Src)
}

func (b *Backend) fill(r image.Rectangle) {
	draw.Draw(b.back, r.Intersect(b.back.Bounds()), image.NewUniform(b.color), image.Point{}, draw.Over)
}

func (b *Backend) DrawRect(r shape.Rect) error {
	if r.Empty() {
		return nil
	}
	x0, y0, x1, y1 := int(r.X), int(r.Y), int(r.Right()), int(r.Bottom())
	b.fill(image.Rect(x0, y0, x1, y0+1))
	if r.H > 1 {
		b.fill(image.Rect(x0, y1-1, x1, y1))
	}
	if r.H > 2 {
		b.fill(image.Rect(x0, y0+1, x0+1, y1-1))
		if r.W > 1 {
			b.fill(image.Rect(x1-1, y0+1, x1, y1-1))
		}
	}
	return nil
}

func (b *Backend) FillRect(r shape.Rect) error {
	b.fill(r.Image())
	return nil
}

func (b *Backend) DrawPoint(p shape.Point) error {
	b.fill(image.Rect(int(p.X), int(p.Y), int(p.X)+1, int(p.Y)+1))
	return nil
}

func (b *Backend) DrawPoints(pts []shape.Point) error {
	for _, p := range pts {
		if err := b.DrawPoint(p); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) CreateTexture(img image.Image) (backend.Texture, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.New("soft: empty texture")
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	return &Texture{img: nrgba, mod: color.RGBA{R: 255, G: 255, B: 255, A: 255}}, nil
}

func (b *Backend) Copy(t backend.Texture, src *shape.Rect, dst shape.Rect) error {
	tex, ok := t.(*Texture)
	if !ok {
		return ErrForeignTexture
	}
	sr := tex.img.Bounds()
	if src != nil {
		sr = src.Image().Intersect(sr)
	}
	b.copies = append(b.copies, CopyCall{Texture: tex, Src: rectFrom(sr), Dst: dst, Mod: tex.mod})
	if sr.Empty() || dst.Empty() {
		return nil
	}

	tinted := tint(tex.img, sr, tex.mod)
	draw.NearestNeighbor.Scale(b.back, dst.Image(), tinted, tinted.Bounds(), draw.Over, nil)
	return nil
}

// tint multiplies the sr region of img by mod, returning a premultiplied copy.
func tint(img *image.NRGBA, sr image.Rectangle, mod color.RGBA) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, sr.Dx(), sr.Dy()))
	for y := 0; y < sr.Dy(); y++ {
		for x := 0; x < sr.Dx(); x++ {
			c := img.NRGBAAt(sr.Min.X+x, sr.Min.Y+y)
			n := color.NRGBA{
				R: mul8(c.R, mod.R),
				G: mul8(c.G, mod.G),
				B: mul8(c.B, mod.B),
				A: mul8(c.A, mod.A),
			}
			out.Set(x, y, n)
		}
	}
	return out
}

func mul8(a, b uint8) uint8 {
	return uint8((uint32(a)*uint32(b) + 127) / 255)
}

func rectFrom(r image.Rectangle) shape.Rect {
	return shape.Rect{X: int32(r.Min.X), Y: int32(r.Min.Y), W: uint32(r.Dx()), H: uint32(r.Dy())}
}

// Events is a scripted event source. Push is safe to call from any
// goroutine, which lets network readers feed it.
type Events struct {
	mu      sync.Mutex
	pending []event.Native
	keys    map[event.Key]bool
	buttons map[event.MouseButton]bool
	mouseX  int32
	mouseY  int32
}

// NewEvents creates an empty event source.
func NewEvents() *Events {
	return &Events{
		keys:    make(map[event.Key]bool),
		buttons: make(map[event.MouseButton]bool),
	}
}

// Push queues native events. Key, button and cursor state follow an event
// when it is polled, not when it is pushed.
func (e *Events) Push(evs ...event.Native) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, evs...)
}

func (e *Events) apply(n event.Native) {
	switch n.Kind {
	case event.NativeKeyDown:
		e.keys[n.Key] = true
	case event.NativeKeyUp:
		delete(e.keys, n.Key)
	case event.NativeMouseButtonDown:
		e.buttons[n.Button] = true
		e.mouseX, e.mouseY = n.X, n.Y
	case event.NativeMouseButtonUp:
		delete(e.buttons, n.Button)
		e.mouseX, e.mouseY = n.X, n.Y
	case event.NativeMouseMotion:
		e.mouseX, e.mouseY = n.X, n.Y
	}
}

// Pending returns how many events have not been polled yet.
func (e *Events) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *Events) PollEvent() (event.Native, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return event.Native{}, false
	}
	n := e.pending[0]
	e.pending = e.pending[1:]
	e.apply(n)
	return n, true
}

func (e *Events) IsKeyPressed(k event.Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.keys[k]
}

func (e *Events) IsMouseButtonPressed(b event.MouseButton) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buttons[b]
}

func (e *Events) MousePosition() (int32, int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mouseX, e.mouseY
}
