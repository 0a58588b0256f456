// Package session is the top-level frame and event loop.
//
// A Window owns a backend, a frame clock, an event queue, a foreground color
// and an active font. Callers drive it once per frame:
//
//	for w.NextFrame() {
//		for w.HasEvent() {
//			handle(w.NextEvent())
//		}
//		w.Clear()
//		w.Print("hello", 10, 10)
//	}
//
// A Window must only be used from one goroutine, and only one should exist
// per process: the Ebitengine backend is a process-wide singleton.
package session

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/junsooki/pixwin/internal/backend"
	"github.com/junsooki/pixwin/internal/backend/soft"
	"github.com/junsooki/pixwin/internal/clock"
	"github.com/junsooki/pixwin/internal/event"
	"github.com/junsooki/pixwin/internal/font"
)

// DefaultFPS is the frame rate used when WithFPS is not given.
const DefaultFPS = 60

// ErrNoFont is the precondition violation raised when printing without a
// font. New always installs one, so this means a broken invariant.
var ErrNoFont = errors.New("no font set on window")

type options struct {
	open    backend.OpenFunc
	timer   clock.Timer
	fps     int
	onError func(error)
}

// Option configures a Window.
type Option func(*options)

// WithBackend selects how the window's backend is created. The default is a
// headless soft backend.
func WithBackend(open backend.OpenFunc) Option {
	return func(o *options) { o.open = open }
}

// WithTimer replaces the wall-clock timer used for frame pacing.
func WithTimer(t clock.Timer) Option {
	return func(o *options) { o.timer = t }
}

// WithFPS sets the target frame rate. Zero disables pacing.
func WithFPS(fps int) Option {
	return func(o *options) { o.fps = fps }
}

// WithDrawErrorHandler makes draw failures recoverable: fn receives the
// error instead of the window panicking.
func WithDrawErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// style is applied to the backend before every draw operation.
type style struct {
	foreground color.RGBA
}

// Window is a running render session.
type Window struct {
	gfx    backend.Backend
	timer  clock.Timer
	clock  *clock.FrameClock
	queue  event.Queue
	style  style
	font   *font.Font
	onErr  func(error)
	closed bool

	running bool
}

// New opens a window titled name and loads the built-in font.
func New(name string, width, height int, opts ...Option) (*Window, error) {
	o := options{
		open: soft.Open,
		fps:  DefaultFPS,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timer == nil {
		o.timer = clock.System()
	}

	gfx, err := o.open(name, width, height)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}

	w := &Window{
		gfx:     gfx,
		timer:   o.timer,
		clock:   clock.New(o.fps),
		style:   style{foreground: color.RGBA{A: 255}},
		onErr:   o.onError,
		running: true,
	}

	// Clear first, then load the default font.
	w.Clear()
	w.gfx.Present()
	w.SetColor(255, 255, 255, 255)

	f, err := font.Default(w.gfx)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("load default font: %w", err)
	}
	w.font = f

	return w, nil
}

// NextFrame presents what was drawn, waits for the frame clock and collects
// input. It returns false once the window has quit, which makes
// `for w.NextFrame() { ... }` terminate naturally.
func (w *Window) NextFrame() bool {
	if !w.running {
		return false
	}

	w.gfx.Present()
	w.clock.Wait(w.timer)

	for {
		n, ok := w.gfx.PollEvent()
		if !ok {
			break
		}
		e, ok := event.Normalize(n)
		if !ok {
			continue
		}
		if e.Type == event.EventQuit {
			w.Quit()
			continue
		}
		w.queue.Push(e)
	}

	return w.running
}

// HasEvent reports whether NextEvent has something to return.
func (w *Window) HasEvent() bool {
	return !w.queue.IsEmpty()
}

// NextEvent removes the oldest queued event. Events come out in the order
// they arrived. It panics when the queue is empty; check HasEvent first.
func (w *Window) NextEvent() event.Event {
	e, err := w.queue.Pop()
	if err != nil {
		panic(fmt.Errorf("session: NextEvent: %w", err))
	}
	return e
}

// IsKeyDown reports whether k is currently held.
func (w *Window) IsKeyDown(k event.Key) bool {
	return w.gfx.IsKeyPressed(k)
}

// IsMouseButtonDown reports whether b is currently held.
func (w *Window) IsMouseButtonDown(b event.MouseButton) bool {
	return w.gfx.IsMouseButtonPressed(b)
}

// MousePosition returns the cursor position relative to the window's
// top-left corner.
func (w *Window) MousePosition() (int32, int32) {
	return w.gfx.MousePosition()
}

// SetFont makes f the font used by Print. A nil font panics.
func (w *Window) SetFont(f *font.Font) {
	if f == nil {
		panic(fmt.Errorf("session: SetFont: %w", ErrNoFont))
	}
	w.font = f
}

// Font returns the active font.
func (w *Window) Font() *font.Font {
	return w.font
}

// Quit stops the window. NextFrame returns false from now on; nothing exits
// immediately.
func (w *Window) Quit() {
	w.running = false
}

// Running reports whether the window has not quit yet.
func (w *Window) Running() bool {
	return w.running
}

// Backend exposes the underlying backend.
func (w *Window) Backend() backend.Backend {
	return w.gfx
}

// MaxSize returns the size of the display the window lives on, when the
// backend knows it.
func (w *Window) MaxSize() (int, int, error) {
	db, ok := w.gfx.(backend.DisplayBounder)
	if !ok {
		return 0, 0, errors.New("backend does not report display bounds")
	}
	return db.DisplayBounds()
}

// Close quits the window and releases the backend. It is safe to call more
// than once.
func (w *Window) Close() error {
	w.Quit()
	if w.closed {
		return nil
	}
	w.closed = true
	if c, ok := w.gfx.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
