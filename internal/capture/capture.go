package capture

import (
	"image"
	"sync"
	"time"
)

// Frame is one presented frame.
type Frame struct {
	Image     *image.RGBA
	Seq       uint64
	Timestamp time.Time
}

// Tap forwards presented frames to a consumer without ever blocking the
// render loop. When the consumer falls behind, frames are dropped.
type Tap struct {
	mu      sync.Mutex
	frameCh chan *Frame
	seq     uint64
	dropped uint64
	closed  bool
}

// NewTap creates a tap buffering up to depth frames.
func NewTap(depth int) *Tap {
	if depth < 1 {
		depth = 1
	}
	return &Tap{frameCh: make(chan *Frame, depth)}
}

// Handle offers img to the consumer. It matches soft.Backend.OnFrame.
func (t *Tap) Handle(img *image.RGBA) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.seq++
	f := &Frame{Image: img, Seq: t.seq, Timestamp: time.Now()}
	select {
	case t.frameCh <- f:
	default:
		t.dropped++
	}
}

// Frames returns the channel frames are delivered on. It is closed by Close.
func (t *Tap) Frames() <-chan *Frame {
	return t.frameCh
}

// Dropped returns how many frames were discarded because the consumer was
// busy.
func (t *Tap) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

func (t *Tap) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.frameCh)
}
