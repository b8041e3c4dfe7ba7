package focus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerIgnoresTicksWhilePaused(t *testing.T) {
	tm := New()
	assert.False(t, tm.Tick(time.Minute))
	assert.Equal(t, WorkDuration, tm.Remaining)
}

func TestTimerCountsDown(t *testing.T) {
	tm := New()
	tm.Toggle()
	assert.False(t, tm.Tick(10*time.Minute))
	assert.Equal(t, 15*time.Minute, tm.Remaining)
	assert.InDelta(t, 0.4, tm.Progress(), 1e-9)

	tm.Toggle()
	tm.Tick(time.Minute)
	assert.Equal(t, 15*time.Minute, tm.Remaining, "paused timer must not move")
}

func TestTimerSwitchesPhases(t *testing.T) {
	tm := New()
	tm.Toggle()

	assert.True(t, tm.Tick(WorkDuration))
	assert.Equal(t, Break, tm.Phase)
	assert.Equal(t, BreakDuration, tm.Remaining)
	assert.False(t, tm.Running, "timer stops at the end of a phase")
	assert.Equal(t, 1, tm.Completed)

	tm.Toggle()
	assert.True(t, tm.Tick(BreakDuration+time.Second))
	assert.Equal(t, Work, tm.Phase)
	assert.Equal(t, WorkDuration, tm.Remaining)
	assert.Equal(t, 1, tm.Completed, "breaks do not count")
}

func TestTimerReset(t *testing.T) {
	tm := New()
	tm.Toggle()
	tm.Tick(WorkDuration)
	tm.Toggle()
	tm.Tick(time.Minute)

	tm.Reset()
	assert.Equal(t, Work, tm.Phase)
	assert.Equal(t, WorkDuration, tm.Remaining)
	assert.False(t, tm.Running)
	assert.Equal(t, 1, tm.Completed)
	assert.Equal(t, "work", tm.Phase.String())
}
