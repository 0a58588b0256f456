package session

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/junsooki/pixwin/internal/backend"
	"github.com/junsooki/pixwin/internal/backend/soft"
	"github.com/junsooki/pixwin/internal/event"
	"github.com/junsooki/pixwin/internal/font"
	"github.com/junsooki/pixwin/internal/shape"
)

// fakeTimer only moves when the clock delays.
type fakeTimer struct {
	now uint32
}

func (f *fakeTimer) Ticks() uint32   { return f.now }
func (f *fakeTimer) Delay(ms uint32) { f.now += ms }

func newTestWindow(t *testing.T, opts ...Option) (*Window, *soft.Backend, *fakeTimer) {
	t.Helper()
	be := soft.New(64, 32)
	timer := &fakeTimer{now: 1000}
	opts = append([]Option{
		WithBackend(func(string, int, int) (backend.Backend, error) { return be, nil }),
		WithTimer(timer),
	}, opts...)
	w, err := New("test", 64, 32, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return w, be, timer
}

func TestNewWindow(t *testing.T) {
	w, be, _ := newTestWindow(t)
	if !w.Running() {
		t.Fatal("expected a running window")
	}
	if w.Font() == nil || w.Font().Len() != len([]rune(font.DefaultAlphabet)) {
		t.Fatal("expected the default font")
	}
	if be.Presents() != 1 {
		t.Fatalf("expected one initial present, got %d", be.Presents())
	}
	if w.Color() != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("expected white foreground, got %v", w.Color())
	}
	if w.HasEvent() {
		t.Fatal("expected no events")
	}
}

func TestNewDoesNotLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	w, _, _ := newTestWindow(t)
	w.NextFrame()
	w.Close()
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}

func TestNewBackendError(t *testing.T) {
	boom := errors.New("no display")
	_, err := New("x", 1, 1, WithBackend(func(string, int, int) (backend.Backend, error) {
		return nil, boom
	}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestNextFrameQueuesEventsInOrder(t *testing.T) {
	w, be, _ := newTestWindow(t)
	be.Push(
		event.Native{Kind: event.NativeKeyDown, Key: event.Key1},
		event.Native{Kind: event.NativeWindowResized},
		event.Native{Kind: event.NativeKeyDown, Key: event.Key2},
		event.Native{Kind: event.NativeMouseWheel},
		event.Native{Kind: event.NativeKeyDown, Key: event.Key3},
	)
	if !w.NextFrame() {
		t.Fatal("expected window to keep running")
	}
	if be.Pending() != 0 {
		t.Fatalf("expected all native events drained, %d left", be.Pending())
	}
	for _, want := range []event.Key{event.Key1, event.Key2, event.Key3} {
		if !w.HasEvent() {
			t.Fatalf("expected event for key %s", want)
		}
		e := w.NextEvent()
		if e.Type != event.EventKeyDown || e.Key != want {
			t.Fatalf("expected key down %s, got %+v", want, e)
		}
	}
	if w.HasEvent() {
		t.Fatal("unrecognized events must be dropped")
	}
}

func TestQuitIsTerminal(t *testing.T) {
	w, be, _ := newTestWindow(t)
	be.Push(
		event.Native{Kind: event.NativeKeyDown, Key: event.KeyA},
		event.Native{Kind: event.NativeQuit},
		event.Native{Kind: event.NativeKeyDown, Key: event.KeyB},
	)
	if w.NextFrame() {
		t.Fatal("expected NextFrame to report quit")
	}
	for w.HasEvent() {
		if e := w.NextEvent(); e.Type == event.EventQuit {
			t.Fatal("quit must not be queued")
		}
	}

	presents := be.Presents()
	be.Push(event.Native{Kind: event.NativeKeyDown, Key: event.KeyC})
	for i := 0; i < 3; i++ {
		if w.NextFrame() {
			t.Fatal("NextFrame must keep returning false after quit")
		}
	}
	if be.Presents() != presents {
		t.Fatal("a stopped window must not present")
	}
	if be.Pending() != 1 || w.HasEvent() {
		t.Fatal("a stopped window must not drain events")
	}
}

func TestQuitMethod(t *testing.T) {
	w, _, _ := newTestWindow(t)
	w.Quit()
	if w.Running() || w.NextFrame() {
		t.Fatal("expected Quit to stop the window")
	}
}

func TestFramePacing(t *testing.T) {
	w, _, timer := newTestWindow(t, WithFPS(60))
	var ticks []uint32
	for i := 0; i < 4; i++ {
		if !w.NextFrame() {
			t.Fatal("unexpected stop")
		}
		ticks = append(ticks, timer.now)
	}
	target := uint32(1000 / 60)
	for i := 1; i < len(ticks); i++ {
		if ticks[i]-ticks[i-1] < target {
			t.Fatalf("frames %d and %d only %d ticks apart", i-1, i, ticks[i]-ticks[i-1])
		}
	}
}

func TestNextEventPanicsWhenEmpty(t *testing.T) {
	w, _, _ := newTestWindow(t)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, event.ErrEmptyQueue) {
			t.Fatalf("expected panic with ErrEmptyQueue, got %v", r)
		}
	}()
	w.NextEvent()
}

func TestInputStateQueries(t *testing.T) {
	w, be, _ := newTestWindow(t)
	be.Push(
		event.Native{Kind: event.NativeKeyDown, Key: event.KeySpace},
		event.Native{Kind: event.NativeMouseButtonDown, Button: event.MouseButtonRight, X: 7, Y: 9},
	)
	if w.IsKeyDown(event.KeySpace) {
		t.Fatal("key state must follow the frame that delivers the event")
	}
	if !w.NextFrame() {
		t.Fatal("expected the window to keep running")
	}
	if !w.IsKeyDown(event.KeySpace) || w.IsKeyDown(event.KeyEnter) {
		t.Fatal("unexpected key state")
	}
	if !w.IsMouseButtonDown(event.MouseButtonRight) || w.IsMouseButtonDown(event.MouseButtonLeft) {
		t.Fatal("unexpected button state")
	}
	if x, y := w.MousePosition(); x != 7 || y != 9 {
		t.Fatalf("unexpected mouse position %d,%d", x, y)
	}
}

// testFont has 'a' 5 wide and 'b' 7 wide.
func testFont(t *testing.T, be *soft.Backend) *font.Font {
	t.Helper()
	tex, err := be.CreateTexture(image.NewNRGBA(image.Rect(0, 0, 12, 4)))
	if err != nil {
		t.Fatal(err)
	}
	f, err := font.New(map[rune]shape.Rect{
		'a': {X: 0, W: 5, H: 4},
		'b': {X: 5, W: 7, H: 4},
	}, 4, tex)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestPrintMissingGlyph(t *testing.T) {
	w, be, _ := newTestWindow(t)
	w.SetFont(testFont(t, be))
	be.ResetCopies()

	covered := w.Print("a b", 10, 3)

	copies := be.Copies()
	if len(copies) != 2 {
		t.Fatalf("expected 2 glyph copies, got %d", len(copies))
	}
	if copies[0].Dst != shape.NewRect(10, 3, 5, 4) {
		t.Fatalf("unexpected 'a' destination %+v", copies[0].Dst)
	}
	if want := shape.NewRect(10+5+MissingGlyphAdvance, 3, 7, 4); copies[1].Dst != want {
		t.Fatalf("expected 'b' at %+v, got %+v", want, copies[1].Dst)
	}
	if copies[1].Src != (shape.Rect{X: 5, W: 7, H: 4}) {
		t.Fatalf("unexpected 'b' source %+v", copies[1].Src)
	}
	if want := shape.NewRect(10, 3, 5+MissingGlyphAdvance+7, 4); covered != want {
		t.Fatalf("expected covered %+v, got %+v", want, covered)
	}
}

func TestPrintTintsWithForeground(t *testing.T) {
	w, be, _ := newTestWindow(t)
	be.ResetCopies()
	w.SetColor(10, 20, 30, 40)
	r := w.Print("hi", 0, 0)
	if r.H != 13 || r.W != 14 {
		t.Fatalf("unexpected covered rect %+v", r)
	}
	for _, c := range be.Copies() {
		if c.Mod != (color.RGBA{R: 10, G: 20, B: 30, A: 40}) {
			t.Fatalf("expected foreground tint, got %v", c.Mod)
		}
	}
	if empty := w.Print("", 4, 5); empty != shape.NewRect(4, 5, 0, 13) {
		t.Fatalf("unexpected rect for empty text %+v", empty)
	}
}

func TestSetFontRejectsNil(t *testing.T) {
	w, _, _ := newTestWindow(t)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
		if w.Font() == nil {
			t.Fatal("font must stay set")
		}
	}()
	w.SetFont(nil)
}

func TestDrawPrimitives(t *testing.T) {
	w, be, _ := newTestWindow(t)
	w.Clear()
	w.SetColor(0, 255, 0, 255)
	w.FillRect(shape.NewRect(0, 0, 2, 2))
	w.DrawRect(shape.NewRect(10, 10, 5, 5))
	w.DrawPoint(shape.NewPoint(20, 20))
	w.DrawPolygon(shape.Polygon{{X: 30, Y: 1}, {X: 31, Y: 2}})
	w.NextFrame()

	green := color.RGBA{G: 255, A: 255}
	f := be.Frame()
	for _, p := range []image.Point{{1, 1}, {10, 14}, {20, 20}, {31, 2}} {
		if got := f.RGBAAt(p.X, p.Y); got != green {
			t.Fatalf("pixel %v: expected green, got %v", p, got)
		}
	}
	if got := f.RGBAAt(12, 12); got != (color.RGBA{A: 255}) {
		t.Fatalf("expected black interior, got %v", got)
	}
}

func TestClearKeepsForeground(t *testing.T) {
	w, be, _ := newTestWindow(t)
	w.SetColor(1, 2, 3, 4)
	w.ClearToColor(200, 100, 50)
	w.NextFrame()
	if got := be.Frame().RGBAAt(0, 0); got != (color.RGBA{R: 200, G: 100, B: 50, A: 255}) {
		t.Fatalf("unexpected clear color %v", got)
	}
	if w.Color() != (color.RGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Fatalf("clear changed the foreground color to %v", w.Color())
	}
}

func TestTranslucentFill(t *testing.T) {
	w, be, _ := newTestWindow(t)
	w.ClearToColor(0, 0, 0)
	w.SetColor(255, 0, 0, 128)
	w.FillRect(shape.NewRect(8, 0, 4, 4))
	w.NextFrame()

	if got := be.Frame().RGBAAt(9, 1); got.R < 127 || got.R > 129 || got.G != 0 || got.A != 255 {
		t.Fatalf("half red over black: expected about {128 0 0 255}, got %v", got)
	}

	w.ClearToColor(255, 255, 255)
	w.SetColor(255, 0, 0, 128)
	w.FillRect(shape.NewRect(0, 0, 4, 4))
	w.NextFrame()
	if got := be.Frame().RGBAAt(1, 1); got.R != 255 || got.G < 126 || got.G > 128 || got.A != 255 {
		t.Fatalf("half red over white: expected about {255 127 127 255}, got %v", got)
	}
}

type failingBackend struct {
	*soft.Backend
}

func (failingBackend) FillRect(shape.Rect) error { return errors.New("device lost") }

func TestDrawErrorsFailFast(t *testing.T) {
	be := failingBackend{soft.New(8, 8)}
	w, err := New("x", 8, 8, WithTimer(&fakeTimer{}),
		WithBackend(func(string, int, int) (backend.Backend, error) { return be, nil }))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if r := recover(); r == nil || !strings.Contains(r.(error).Error(), "device lost") {
			t.Fatalf("expected fail-fast panic, got %v", r)
		}
	}()
	w.FillRect(shape.NewRect(0, 0, 1, 1))
}

func TestDrawErrorHandler(t *testing.T) {
	be := failingBackend{soft.New(8, 8)}
	var got error
	w, err := New("x", 8, 8, WithTimer(&fakeTimer{}),
		WithBackend(func(string, int, int) (backend.Backend, error) { return be, nil }),
		WithDrawErrorHandler(func(err error) { got = err }))
	if err != nil {
		t.Fatal(err)
	}
	w.FillRect(shape.NewRect(0, 0, 1, 1))
	if got == nil || !strings.Contains(got.Error(), "fill rect") {
		t.Fatalf("expected handled error, got %v", got)
	}
}

func pngOf(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadImageAndDraw(t *testing.T) {
	w, be, _ := newTestWindow(t)
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	img, err := w.LoadImage(pngOf(t, src))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width() != 3 || img.Height() != 2 {
		t.Fatalf("unexpected image size %dx%d", img.Width(), img.Height())
	}

	be.ResetCopies()
	w.SetColor(255, 0, 0, 255)
	w.DrawImage(img, 4, 5)
	copies := be.Copies()
	if len(copies) != 1 || copies[0].Dst != shape.NewRect(4, 5, 3, 2) {
		t.Fatalf("unexpected copies %+v", copies)
	}
	if copies[0].Mod != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("expected red tint, got %v", copies[0].Mod)
	}

	if _, err := w.LoadImage([]byte("nope")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := w.LoadImageFromFile("/does/not/exist.png"); err == nil {
		t.Fatal("expected file error")
	}
}

func TestLoadFont(t *testing.T) {
	w, _, _ := newTestWindow(t)
	img := image.NewNRGBA(image.Rect(0, 0, 5, 2))
	for y := 0; y < 2; y++ {
		for _, x := range []int{0, 2, 4} {
			img.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	f, err := w.LoadFont(pngOf(t, img), "xy")
	if err != nil {
		t.Fatal(err)
	}
	w.SetFont(f)
	if r := w.Print("xyz", 0, 0); r.W != 1+1+MissingGlyphAdvance || r.H != 2 {
		t.Fatalf("unexpected covered rect %+v", r)
	}

	if _, err := w.LoadFont(pngOf(t, img), "xx"); !errors.Is(err, font.ErrDuplicateAlphabetChar) {
		t.Fatalf("expected duplicate alphabet error, got %v", err)
	}
}

func TestMaxSizeAndClose(t *testing.T) {
	w, _, _ := newTestWindow(t)
	if _, _, err := w.MaxSize(); err == nil {
		t.Fatal("soft backend has no display bounds")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if w.NextFrame() {
		t.Fatal("closed window must not run")
	}
}
