package display

import (
	"errors"
	"image"
	"image/color"
	"log"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/junsooki/pixwin/internal/backend"
	"github.com/junsooki/pixwin/internal/event"
	"github.com/junsooki/pixwin/internal/shape"
)

// ErrAlreadyRunning is returned by Run when another Ebiten display is live.
// Ebitengine supports one game per process.
var ErrAlreadyRunning = errors.New("display: an Ebitengine window is already running")

var live atomic.Bool

type cmdKind uint8

const (
	cmdClear cmdKind = iota
	cmdFill
	cmdStroke
	cmdCopy
)

// command is one recorded draw call. color holds straight alpha, both for
// the draw color and for a texture's color mod.
type command struct {
	kind  cmdKind
	rect  image.Rectangle
	color color.RGBA
	tex   *Texture
	src   image.Rectangle
}

// paint returns the draw color in a form Ebitengine premultiplies itself.
func (c command) paint() color.NRGBA {
	return color.NRGBA(c.color)
}

// Texture keeps the decoded image until Draw uploads it on the main
// goroutine. The uploaded image has its origin at (0, 0).
type Texture struct {
	src  image.Image
	w, h uint32
	mod  color.RGBA
	img  *ebiten.Image
}

func (t *Texture) Size() (uint32, uint32) { return t.w, t.h }

func (t *Texture) SetColorMod(c color.RGBA) { t.mod = c }

func (t *Texture) upload() *ebiten.Image {
	if t.img == nil {
		t.img = ebiten.NewImageFromImage(t.src)
	}
	return t.img
}

// Ebiten is a backend.Backend that renders through Ebitengine.
type Ebiten struct {
	// Session goroutine only.
	cmds  []command
	color color.RGBA

	mu      sync.Mutex
	title   string
	width   int
	height  int
	ready   []command
	pending []event.Native
	keys    map[event.Key]bool
	buttons map[event.MouseButton]bool
	mouseX  int32
	mouseY  int32
	done    bool
	closing bool

	prevMouseX int
	prevMouseY int
}

// NewEbiten creates an Ebitengine display. Nothing is shown until Run.
func NewEbiten() *Ebiten {
	return &Ebiten{
		width:   640,
		height:  480,
		color:   color.RGBA{A: 255},
		keys:    make(map[event.Key]bool),
		buttons: make(map[event.MouseButton]bool),
	}
}

// Open is a backend.OpenFunc that sizes and titles the window.
func (d *Ebiten) Open(title string, width, height int) (backend.Backend, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("display: window size must be positive")
	}
	d.mu.Lock()
	d.title, d.width, d.height = title, width, height
	d.mu.Unlock()
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	return d, nil
}

// Run starts the Ebitengine game loop and runs loop on a separate goroutine.
// It returns once both have finished. Must be called from the main
// goroutine.
func (d *Ebiten) Run(loop func()) error {
	if !live.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer live.Store(false)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		defer d.finish()
		loop()
	}()

	err := ebiten.RunGame(d)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}

	// The window is gone; make sure the loop sees a quit.
	d.mu.Lock()
	d.pending = append(d.pending, event.Native{Kind: event.NativeQuit})
	d.mu.Unlock()
	<-loopDone
	return err
}

func (d *Ebiten) finish() {
	d.mu.Lock()
	d.done = true
	d.mu.Unlock()
}

// Close ends the game loop after the current frame.
func (d *Ebiten) Close() error {
	d.finish()
	return nil
}

// DisplayBounds reports the size of the monitor the window is on.
func (d *Ebiten) DisplayBounds() (int, int, error) {
	m := ebiten.Monitor()
	if m == nil {
		return 0, 0, errors.New("display: no monitor")
	}
	w, h := m.Size()
	return w, h, nil
}

// --- ebiten.Game interface ---

func (d *Ebiten) Update() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return ebiten.Termination
	}
	if ebiten.IsWindowBeingClosed() && !d.closing {
		d.closing = true
		log.Println("window close requested")
		d.pending = append(d.pending, event.Native{Kind: event.NativeQuit})
	}
	d.captureMouseInput()
	d.captureKeyboardInput()
	return nil
}

func (d *Ebiten) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	frame := d.ready
	d.mu.Unlock()

	for _, c := range frame {
		replay(screen, c)
	}
}

func (d *Ebiten) Layout(outsideWidth, outsideHeight int) (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func replay(screen *ebiten.Image, c command) {
	x, y := float32(c.rect.Min.X), float32(c.rect.Min.Y)
	w, h := float32(c.rect.Dx()), float32(c.rect.Dy())
	switch c.kind {
	case cmdClear:
		screen.Fill(c.paint())
	case cmdFill:
		vector.DrawFilledRect(screen, x, y, w, h, c.paint(), false)
	case cmdStroke:
		vector.StrokeRect(screen, x+0.5, y+0.5, w-1, h-1, 1, c.paint(), false)
	case cmdCopy:
		img := c.tex.upload()
		sub, ok := img.SubImage(c.src).(*ebiten.Image)
		if !ok || c.src.Empty() {
			return
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(w)/float64(c.src.Dx()), float64(h)/float64(c.src.Dy()))
		op.GeoM.Translate(float64(x), float64(y))
		// Color mod multiplies color and alpha independently; the screen
		// works in premultiplied alpha.
		a := float32(c.color.A) / 255
		op.ColorScale.Scale(
			float32(c.color.R)/255*a,
			float32(c.color.G)/255*a,
			float32(c.color.B)/255*a,
			a,
		)
		screen.DrawImage(sub, op)
	}
}

// --- backend.Graphics, called from the session goroutine ---

func (d *Ebiten) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *Ebiten) Present() {
	frame := d.cmds
	d.cmds = make([]command, 0, len(frame))
	d.mu.Lock()
	d.ready = frame
	d.mu.Unlock()
}

func (d *Ebiten) SetDrawColor(c color.RGBA) {
	d.color = c
}

func (d *Ebiten) Clear() {
	// Everything before a clear is hidden; drop it.
	d.cmds = append(d.cmds[:0], command{kind: cmdClear, color: d.color})
}

func (d *Ebiten) DrawRect(r shape.Rect) error {
	if !r.Empty() {
		d.cmds = append(d.cmds, command{kind: cmdStroke, rect: r.Image(), color: d.color})
	}
	return nil
}

func (d *Ebiten) FillRect(r shape.Rect) error {
	if !r.Empty() {
		d.cmds = append(d.cmds, command{kind: cmdFill, rect: r.Image(), color: d.color})
	}
	return nil
}

func (d *Ebiten) DrawPoint(p shape.Point) error {
	return d.FillRect(shape.NewRect(p.X, p.Y, 1, 1))
}

func (d *Ebiten) DrawPoints(pts []shape.Point) error {
	for _, p := range pts {
		if err := d.DrawPoint(p); err != nil {
			return err
		}
	}
	return nil
}

func (d *Ebiten) CreateTexture(img image.Image) (backend.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.New("display: empty texture")
	}
	return &Texture{
		src: img,
		w:   uint32(b.Dx()),
		h:   uint32(b.Dy()),
		mod: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}, nil
}

func (d *Ebiten) Copy(t backend.Texture, src *shape.Rect, dst shape.Rect) error {
	tex, ok := t.(*Texture)
	if !ok {
		return errors.New("display: texture was not created by this backend")
	}
	sr := image.Rect(0, 0, int(tex.w), int(tex.h))
	if src != nil {
		sr = src.Image().Intersect(sr)
	}
	d.cmds = append(d.cmds, command{kind: cmdCopy, rect: dst.Image(), color: tex.mod, tex: tex, src: sr})
	return nil
}

// --- backend.EventSource ---

func (d *Ebiten) PollEvent() (event.Native, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return event.Native{}, false
	}
	n := d.pending[0]
	d.pending = d.pending[1:]
	return n, true
}

func (d *Ebiten) IsKeyPressed(k event.Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.keys[k]
}

func (d *Ebiten) IsMouseButtonPressed(b event.MouseButton) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buttons[b]
}

func (d *Ebiten) MousePosition() (int32, int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mouseX, d.mouseY
}

// --- Input capture, called from Update with d.mu held ---

func (d *Ebiten) captureMouseInput() {
	mx, my := ebiten.CursorPosition()
	d.mouseX, d.mouseY = int32(mx), int32(my)

	// Mouse move.
	if mx != d.prevMouseX || my != d.prevMouseY {
		d.prevMouseX = mx
		d.prevMouseY = my
		d.pending = append(d.pending, event.Native{Kind: event.NativeMouseMotion, X: int32(mx), Y: int32(my)})
	}

	// Mouse buttons.
	mods := currentModifiers()
	for _, b := range buttonMap {
		d.buttons[b.btn] = ebiten.IsMouseButtonPressed(b.eb)
		if inpututil.IsMouseButtonJustPressed(b.eb) {
			d.pending = append(d.pending, event.Native{Kind: event.NativeMouseButtonDown, Button: b.btn, X: int32(mx), Y: int32(my), Modifiers: mods})
		}
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			d.pending = append(d.pending, event.Native{Kind: event.NativeMouseButtonUp, Button: b.btn, X: int32(mx), Y: int32(my), Modifiers: mods})
		}
	}

	// Scroll.
	if _, dy := ebiten.Wheel(); dy != 0 {
		d.pending = append(d.pending, event.Native{Kind: event.NativeMouseWheel, Y: int32(dy)})
	}
}

func (d *Ebiten) captureKeyboardInput() {
	mods := currentModifiers()
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		key := sessionKey(k)
		if key == event.KeyUnknown {
			// Still reported so the session can drop it like any other
			// unrecognized event.
			if inpututil.IsKeyJustPressed(k) {
				d.pending = append(d.pending, event.Native{Kind: event.NativeKeyDown, Modifiers: mods})
			}
			continue
		}
		d.keys[key] = ebiten.IsKeyPressed(k)
		if inpututil.IsKeyJustPressed(k) {
			d.pending = append(d.pending, event.Native{Kind: event.NativeKeyDown, Key: key, Modifiers: mods})
		}
		if inpututil.IsKeyJustReleased(k) {
			d.pending = append(d.pending, event.Native{Kind: event.NativeKeyUp, Key: key, Modifiers: mods})
		}
	}
}
