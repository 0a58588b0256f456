package soft

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/junsooki/pixwin/internal/backend"
	"github.com/junsooki/pixwin/internal/event"
	"github.com/junsooki/pixwin/internal/shape"
)

var _ backend.Backend = (*Backend)(nil)

var red = color.RGBA{R: 255, A: 255}

func TestClearAndPresent(t *testing.T) {
	b := New(4, 3)
	b.SetDrawColor(red)
	b.Clear()
	if b.Frame().RGBAAt(0, 0) == red {
		t.Fatal("frame must not change before Present")
	}

	var got *image.RGBA
	b.OnFrame(func(f *image.RGBA) { got = f })
	b.Present()

	if b.Presents() != 1 {
		t.Fatalf("expected 1 present, got %d", b.Presents())
	}
	if b.Frame().RGBAAt(3, 2) != red {
		t.Fatalf("expected red frame, got %v", b.Frame().RGBAAt(3, 2))
	}
	if got == nil || got.RGBAAt(1, 1) != red {
		t.Fatal("expected frame callback with a red copy")
	}
	if got == b.Frame() {
		t.Fatal("frame callback must receive its own copy")
	}
}

func TestFillAndOutline(t *testing.T) {
	b := New(6, 6)
	b.SetDrawColor(red)
	if err := b.DrawRect(shape.NewRect(1, 1, 4, 4)); err != nil {
		t.Fatal(err)
	}
	b.Present()
	f := b.Frame()
	if f.RGBAAt(1, 1) != red || f.RGBAAt(4, 4) != red || f.RGBAAt(4, 2) != red {
		t.Fatal("expected outline pixels")
	}
	if f.RGBAAt(2, 2) == red {
		t.Fatal("outline must leave the interior untouched")
	}

	if err := b.FillRect(shape.NewRect(2, 2, 2, 2)); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawPoints([]shape.Point{{X: 0, Y: 5}}); err != nil {
		t.Fatal(err)
	}
	b.Present()
	if f.RGBAAt(3, 3) != red || f.RGBAAt(0, 5) != red {
		t.Fatal("expected filled interior and point")
	}
}

func TestCopyTints(t *testing.T) {
	b := New(4, 1)
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	tex, err := b.CreateTexture(src)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := tex.Size(); w != 2 || h != 1 {
		t.Fatalf("unexpected texture size %dx%d", w, h)
	}

	tex.SetColorMod(color.RGBA{R: 255, G: 0, B: 0, A: 255})
	if err := b.Copy(tex, &shape.Rect{X: 1, Y: 0, W: 1, H: 1}, shape.NewRect(2, 0, 1, 1)); err != nil {
		t.Fatal(err)
	}
	calls := b.Copies()
	if len(calls) != 1 || calls[0].Src != (shape.Rect{X: 1, W: 1, H: 1}) || calls[0].Mod != red {
		t.Fatalf("unexpected copy record %+v", calls)
	}

	b.Present()
	if got := b.Frame().RGBAAt(2, 0); got != red {
		t.Fatalf("expected tinted red pixel, got %v", got)
	}
	if got := b.Frame().RGBAAt(0, 0); got.A != 0 {
		t.Fatalf("expected untouched pixel, got %v", got)
	}
	if len(b.Copies()) != 0 {
		t.Fatal("expected Present to start a fresh copy log")
	}

	if err := b.Copy(tex, nil, shape.NewRect(0, 0, 1, 1)); err != nil {
		t.Fatal(err)
	}
	b.ResetCopies()
	if len(b.Copies()) != 0 {
		t.Fatal("expected copies to reset")
	}
}

func TestCopyLogIsPerFrame(t *testing.T) {
	b := New(4, 4)
	tex, err := b.CreateTexture(image.NewNRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil {
		t.Fatal(err)
	}
	for frame := 0; frame < 1000; frame++ {
		for i := 0; i < 20; i++ {
			if err := b.Copy(tex, nil, shape.NewRect(0, 0, 2, 2)); err != nil {
				t.Fatal(err)
			}
		}
		if n := len(b.Copies()); n != 20 {
			t.Fatalf("frame %d: expected 20 copies, got %d", frame, n)
		}
		b.Present()
	}
	if n := len(b.Copies()); n != 0 {
		t.Fatalf("expected no copies retained after the last present, got %d", n)
	}
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -1 && d <= 1
}

func TestTranslucentFillBlends(t *testing.T) {
	tests := []struct {
		name string
		bg   color.RGBA
		want color.RGBA
	}{
		{"over white", color.RGBA{R: 255, G: 255, B: 255, A: 255}, color.RGBA{R: 255, G: 127, B: 127, A: 255}},
		{"over black", color.RGBA{A: 255}, color.RGBA{R: 128, A: 255}},
	}
	for _, tt := range tests {
		b := New(2, 2)
		b.SetDrawColor(tt.bg)
		b.Clear()
		b.SetDrawColor(color.RGBA{R: 255, A: 128})
		if err := b.FillRect(shape.NewRect(0, 0, 1, 1)); err != nil {
			t.Fatal(err)
		}
		b.Present()
		got := b.Frame().RGBAAt(0, 0)
		if !near(got.R, tt.want.R) || !near(got.G, tt.want.G) || !near(got.B, tt.want.B) || got.A != tt.want.A {
			t.Fatalf("%s: expected about %v, got %v", tt.name, tt.want, got)
		}
		if got := b.Frame().RGBAAt(1, 1); got != tt.bg {
			t.Fatalf("%s: fill leaked outside its rect: %v", tt.name, got)
		}
	}
}

type otherTexture struct{}

func (otherTexture) Size() (uint32, uint32)   { return 1, 1 }
func (otherTexture) SetColorMod(c color.RGBA) {}

func TestCopyForeignTexture(t *testing.T) {
	b := New(1, 1)
	err := b.Copy(otherTexture{}, nil, shape.NewRect(0, 0, 1, 1))
	if !errors.Is(err, ErrForeignTexture) {
		t.Fatalf("expected ErrForeignTexture, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open("x", 0, 10); err == nil {
		t.Fatal("expected error for zero width")
	}
	be, err := Open("x", 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := be.Size(); w != 8 || h != 8 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
}

func TestEvents(t *testing.T) {
	e := NewEvents()
	e.Push(
		event.Native{Kind: event.NativeKeyDown, Key: event.KeyA},
		event.Native{Kind: event.NativeMouseButtonDown, Button: event.MouseButtonLeft, X: 3, Y: 4},
	)
	if e.IsKeyPressed(event.KeyA) || e.IsMouseButtonPressed(event.MouseButtonLeft) {
		t.Fatal("state must not change before the events are polled")
	}
	if e.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", e.Pending())
	}

	n, ok := e.PollEvent()
	if !ok || n.Kind != event.NativeKeyDown {
		t.Fatalf("unexpected first event %+v", n)
	}
	if !e.IsKeyPressed(event.KeyA) || e.IsMouseButtonPressed(event.MouseButtonLeft) {
		t.Fatal("expected only the key to be pressed after the first poll")
	}
	e.PollEvent()
	if !e.IsMouseButtonPressed(event.MouseButtonLeft) {
		t.Fatal("expected button pressed")
	}
	if x, y := e.MousePosition(); x != 3 || y != 4 {
		t.Fatalf("unexpected cursor %d,%d", x, y)
	}

	e.Push(event.Native{Kind: event.NativeKeyUp, Key: event.KeyA})
	if !e.IsKeyPressed(event.KeyA) {
		t.Fatal("release must wait for its event to be polled")
	}
	e.PollEvent()
	if e.IsKeyPressed(event.KeyA) {
		t.Fatal("expected key release")
	}
	if _, ok := e.PollEvent(); ok {
		t.Fatal("expected no more events")
	}
}
