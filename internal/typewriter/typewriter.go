// Package typewriter reveals text one character at a time into a display target.
package typewriter

import (
	"sync"
	"time"
)

// Target receives the progressively revealed text.
type Target interface {
	SetText(text string)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(text string)

func (f TargetFunc) SetText(text string) { f(text) }

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

// AfterFunc schedules on the runtime timer.
func AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Writer owns a single target. Starting a new reveal cancels the previous one,
// so two reveals never interleave on the same target.
type Writer struct {
	target   Target
	delay    time.Duration
	schedule Scheduler

	mu   sync.Mutex
	gen  uint64
	stop func() bool
	done chan struct{}
}

func New(target Target, delay time.Duration) *Writer {
	return NewWithScheduler(target, delay, AfterFunc)
}

func NewWithScheduler(target Target, delay time.Duration, schedule Scheduler) *Writer {
	return &Writer{
		target:   target,
		delay:    delay,
		schedule: schedule,
	}
}

// Start clears the target and begins revealing text. The first character is
// shown immediately, each following one after the configured delay.
// The returned channel is closed once the full text is shown; it is never
// closed if the reveal is cancelled.
func (w *Writer) Start(text string) <-chan struct{} {
	runes := []rune(text)
	done := make(chan struct{})

	w.mu.Lock()
	w.cancelLocked()
	w.gen++
	gen := w.gen
	w.done = done
	w.mu.Unlock()

	w.target.SetText("")
	w.step(gen, runes, 0)
	return done
}

// SetDelay changes the pace of later characters, including those of a
// reveal already in progress.
func (w *Writer) SetDelay(d time.Duration) {
	w.mu.Lock()
	w.delay = d
	w.mu.Unlock()
}

// Cancel stops the reveal in progress, leaving the target as it is.
func (w *Writer) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
	w.gen++
}

func (w *Writer) cancelLocked() {
	if w.stop != nil {
		w.stop()
		w.stop = nil
	}
}

func (w *Writer) step(gen uint64, runes []rune, i int) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	if i >= len(runes) {
		w.stop = nil
		close(w.done)
		w.mu.Unlock()
		return
	}
	// SetText under the lock keeps a concurrent Start from being
	// overwritten by a stale step.
	w.target.SetText(string(runes[:i+1]))
	if i+1 >= len(runes) {
		w.stop = nil
		close(w.done)
		w.mu.Unlock()
		return
	}
	w.stop = w.schedule(w.delay, func() { w.step(gen, runes, i+1) })
	w.mu.Unlock()
}
