package workout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestTimerCountdown(t *testing.T) {
	var rt RestTimer
	rt.Start(3)
	assert.True(t, rt.Active())
	assert.Equal(t, 3, rt.Remaining())
	assert.InDelta(t, 1.0, rt.Progress(), 1e-9)

	assert.False(t, rt.Tick())
	assert.Equal(t, 2, rt.Remaining())
	assert.False(t, rt.Tick())
	assert.True(t, rt.Tick(), "third tick ends a 3s rest")
	assert.False(t, rt.Active())
	assert.Equal(t, 0, rt.Remaining())

	// Ticks after the end never go negative.
	assert.False(t, rt.Tick())
	assert.Equal(t, 0, rt.Remaining())
}

func TestRestTimerZeroIsNoop(t *testing.T) {
	var rt RestTimer
	rt.Start(0)
	assert.False(t, rt.Active())
	assert.Equal(t, 0, rt.Total())
	assert.Zero(t, rt.Progress())

	rt.Start(-5)
	assert.False(t, rt.Active())
}

func TestRestTimerDismissKeepsRemaining(t *testing.T) {
	var rt RestTimer
	rt.Start(90)
	rt.Tick()
	rt.Dismiss()
	assert.False(t, rt.Active())
	assert.Equal(t, 89, rt.Remaining())
	assert.False(t, rt.Tick(), "inactive timer ignores ticks")
	assert.Equal(t, 89, rt.Remaining())
}

func TestRestTimerRestart(t *testing.T) {
	var rt RestTimer
	rt.Start(60)
	rt.Tick()
	rt.Start(120)
	assert.Equal(t, 120, rt.Remaining())
	assert.Equal(t, 120, rt.Total())
}
