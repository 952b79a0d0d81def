package workout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	log := []SetLogEntry{
		{ExerciseID: "bench", SetNumber: 1, WeightKg: 60, Reps: 10},
		{ExerciseID: "bench", SetNumber: 2, WeightKg: 60, Reps: 8, IsPersonalRecord: true},
		{ExerciseID: "row", SetNumber: 1, WeightKg: 50, Reps: 12},
	}

	s := Summarize(log, start, start.Add(47*time.Minute+40*time.Second))
	assert.Equal(t, 48, s.DurationMins)
	assert.InDelta(t, 60*10+60*8+50*12, s.TotalVolumeKg, 1e-9)
	assert.Equal(t, 2, s.ExerciseCount)
	assert.Equal(t, 3, s.SetCount)
	assert.Equal(t, 1, s.PRCount)
}

func TestSummarizeMinimumDuration(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	s := Summarize(nil, start, start.Add(10*time.Second))
	assert.Equal(t, 1, s.DurationMins)
	assert.Zero(t, s.TotalVolumeKg)
	assert.Zero(t, s.ExerciseCount)
}
