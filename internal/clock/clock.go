package clock

import "time"

// pollInterval is how long Wait sleeps between tick reads.
const pollInterval = 3

// Timer supplies monotonic ticks (milliseconds) and a blocking delay.
type Timer interface {
	Ticks() uint32
	Delay(ms uint32)
}

// FrameClock enforces a minimum number of ticks between frames.
type FrameClock struct {
	target   uint32
	previous uint32
}

// New creates a FrameClock targeting fps frames per second.
// fps <= 0 disables pacing.
func New(fps int) *FrameClock {
	c := &FrameClock{}
	if fps > 0 {
		c.target = uint32(1000 / fps)
	}
	return c
}

// Target returns the minimum ticks per frame.
func (c *FrameClock) Target() uint32 {
	return c.target
}

// Previous returns the tick count recorded at the end of the last wait.
func (c *FrameClock) Previous() uint32 {
	return c.previous
}

// Wait blocks until at least Target ticks have passed since the previous
// frame, then records the current tick count.
func (c *FrameClock) Wait(t Timer) {
	now := t.Ticks()
	// Unsigned subtraction stays correct across a tick wrap-around.
	for now-c.previous < c.target {
		t.Delay(pollInterval)
		now = t.Ticks()
	}
	c.previous = now
}

// SystemTimer is a Timer backed by the wall clock.
type SystemTimer struct {
	start time.Time
}

// System returns a Timer whose ticks count milliseconds since the call.
func System() *SystemTimer {
	return &SystemTimer{start: time.Now()}
}

func (s *SystemTimer) Ticks() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

func (s *SystemTimer) Delay(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
