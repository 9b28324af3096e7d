package ams

import (
	"sync"
	"testing"
	"time"
)

type edgeRecorder struct {
	mu    sync.Mutex
	edges []bool
}

func (r *edgeRecorder) record(v bool) {
	r.mu.Lock()
	r.edges = append(r.edges, v)
	r.mu.Unlock()
}

func (r *edgeRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.edges))
	copy(out, r.edges)
	return out
}

const testOffDelay = 40 * time.Millisecond

func TestProgressLatch_FlickerStaysVisible(t *testing.T) {
	rec := &edgeRecorder{}
	l := NewProgressLatch(testOffDelay, rec.record)

	l.Set(true)
	l.Set(false)
	time.Sleep(testOffDelay / 4)
	l.Set(true) // retrigger inside the delay cancels the pending off

	time.Sleep(2 * testOffDelay)
	if !l.Visible() {
		t.Fatalf("visible signal dropped despite retrigger")
	}
	if got := rec.snapshot(); len(got) != 1 || !got[0] {
		t.Fatalf("expected a single on edge, got %v", got)
	}
}

func TestProgressLatch_DelayedOffFiresOnce(t *testing.T) {
	rec := &edgeRecorder{}
	l := NewProgressLatch(testOffDelay, rec.record)

	l.Set(true)
	l.Set(false)
	l.Set(false) // duplicate off must not re-arm or double-fire
	if !l.Visible() {
		t.Fatalf("visible signal must hold through the delay")
	}

	time.Sleep(3 * testOffDelay)
	if l.Visible() {
		t.Fatalf("visible signal still on after the delay")
	}
	if got := rec.snapshot(); len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected exactly [on off], got %v", got)
	}
}

func TestProgressLatch_OffWhileAlreadyOffIsNoop(t *testing.T) {
	rec := &edgeRecorder{}
	l := NewProgressLatch(testOffDelay, rec.record)
	l.Set(false)
	time.Sleep(2 * testOffDelay)
	if l.Visible() {
		t.Fatalf("latch turned visible without an on signal")
	}
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("expected no edges, got %v", got)
	}
}
