// Package focus is the Pomodoro focus timer: a work block followed by a
// short break, repeated.
package focus

import "time"

const (
	WorkDuration  = 25 * time.Minute
	BreakDuration = 5 * time.Minute
)

// Phase is the part of the cycle the timer is in.
type Phase int

const (
	Work Phase = iota
	Break
)

func (p Phase) String() string {
	if p == Break {
		return "break"
	}
	return "work"
}

// Duration is the full length of the phase.
func (p Phase) Duration() time.Duration {
	if p == Break {
		return BreakDuration
	}
	return WorkDuration
}

// Timer counts down the current phase. The zero value is not ready; use
// New.
type Timer struct {
	Phase     Phase
	Remaining time.Duration
	Running   bool
	// Completed counts finished work blocks.
	Completed int
}

// New returns a stopped timer at the start of a work block.
func New() Timer {
	return Timer{Phase: Work, Remaining: WorkDuration}
}

// Toggle starts or pauses the countdown.
func (t *Timer) Toggle() {
	t.Running = !t.Running
}

// Reset stops the timer and returns to the start of a work block. The
// completed count is kept.
func (t *Timer) Reset() {
	t.Phase = Work
	t.Remaining = WorkDuration
	t.Running = false
}

// Tick advances a running timer by d. When the phase runs out the timer
// switches to the other phase, stops, and Tick reports true.
func (t *Timer) Tick(d time.Duration) bool {
	if !t.Running {
		return false
	}
	t.Remaining -= d
	if t.Remaining > 0 {
		return false
	}
	if t.Phase == Work {
		t.Completed++
		t.Phase = Break
	} else {
		t.Phase = Work
	}
	t.Remaining = t.Phase.Duration()
	t.Running = false
	return true
}

// Progress is the elapsed share of the current phase in [0, 1].
func (t Timer) Progress() float64 {
	total := t.Phase.Duration()
	return float64(total-t.Remaining) / float64(total)
}
