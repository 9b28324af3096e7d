package ams

import (
	"sync"
	"time"
)

// DefaultOffDelay is how long the visible busy signal outlives the raw one.
const DefaultOffDelay = 1500 * time.Millisecond

// ProgressLatch is a delayed-off latch over the "should show progress"
// signal. StatusMain can bounce briefly (1 -> 0 -> 1) before settling,
// which would make a progress indicator flash; the latch keeps the visible
// signal on for a fixed delay after the raw signal turns off, and cancels
// the pending off if the signal turns on again first.
type ProgressLatch struct {
	mu       sync.Mutex
	delay    time.Duration
	visible  bool
	timer    *time.Timer
	gen      uint64
	onChange func(visible bool)
}

// NewProgressLatch builds a latch with the given off delay. onChange may be
// nil; when set, it is called outside the latch's lock on every visible
// edge, exactly once per edge.
func NewProgressLatch(delay time.Duration, onChange func(bool)) *ProgressLatch {
	if delay <= 0 {
		delay = DefaultOffDelay
	}
	return &ProgressLatch{delay: delay, onChange: onChange}
}

// Set feeds the raw busy signal into the latch.
func (l *ProgressLatch) Set(active bool) {
	l.mu.Lock()
	if active {
		l.gen++
		if l.timer != nil {
			l.timer.Stop()
			l.timer = nil
		}
		if !l.visible {
			l.visible = true
			l.mu.Unlock()
			l.notify(true)
			return
		}
		l.mu.Unlock()
		return
	}
	if !l.visible || l.timer != nil {
		l.mu.Unlock()
		return
	}
	l.gen++
	gen := l.gen
	l.timer = time.AfterFunc(l.delay, func() { l.expire(gen) })
	l.mu.Unlock()
}

// expire turns the visible signal off unless the latch was retriggered
// since the timer was armed.
func (l *ProgressLatch) expire(gen uint64) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.timer = nil
	l.visible = false
	l.mu.Unlock()
	l.notify(false)
}

// Visible reports the debounced signal.
func (l *ProgressLatch) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

func (l *ProgressLatch) notify(visible bool) {
	if l.onChange != nil {
		l.onChange(visible)
	}
}
