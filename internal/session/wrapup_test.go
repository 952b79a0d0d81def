package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/reprx/internal/storage"
	"github.com/claude/reprx/internal/workout"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	finished  []storage.FinishedSession
	notes     map[uuid.UUID]string
	finishErr error
}

func (r *fakeRecorder) FinishSession(_ context.Context, fs storage.FinishedSession) error {
	if r.finishErr != nil {
		return r.finishErr
	}
	r.finished = append(r.finished, fs)
	return nil
}

func (r *fakeRecorder) SetSessionNote(_ context.Context, id uuid.UUID, note string) error {
	if r.notes == nil {
		r.notes = map[uuid.UUID]string{}
	}
	r.notes[id] = note
	return nil
}

type fixedNote string

func (n fixedNote) SessionNote(context.Context, workout.Summary) string { return string(n) }

func wrapupResult() Result {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	return Result{
		SessionID: uuid.New(),
		StartedAt: start,
		EndedAt:   start.Add(42 * time.Minute),
		Plan: workout.Plan{
			{ExerciseID: "back-squat", Name: "Back Squat"},
			{ExerciseID: "leg-press", Name: "Leg Press"},
		},
		Log: []workout.SetLogEntry{
			{ExerciseID: "back-squat", SetNumber: 1, WeightKg: 100, Reps: 5, IsPersonalRecord: true, LoggedAt: start.Add(5 * time.Minute)},
			{ExerciseID: "back-squat", SetNumber: 2, WeightKg: 100, Reps: 5, LoggedAt: start.Add(9 * time.Minute)},
			{ExerciseID: "leg-press", SetNumber: 1, WeightKg: 180, Reps: 10, LoggedAt: start.Add(20 * time.Minute)},
		},
	}
}

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestWrapupSavesSessionAndNote(t *testing.T) {
	rec := &fakeRecorder{}
	w := NewWrapup(rec, fixedNote("Solid squat PR, keep the depth."), quietLog())
	res := wrapupResult()

	require.NoError(t, w.Finish(context.Background(), res))
	require.Len(t, rec.finished, 1)

	fs := rec.finished[0]
	assert.Equal(t, res.SessionID, fs.ID)
	assert.Equal(t, 42, fs.Summary.DurationMins)
	assert.InDelta(t, 100*5*2+180*10, fs.Summary.TotalVolumeKg, 1e-9)
	assert.Equal(t, 2, fs.Summary.ExerciseCount)
	assert.Equal(t, 1, fs.Summary.PRCount)
	require.Len(t, fs.Sets, 3)
	assert.Equal(t, "Leg Press", fs.Sets[2].ExerciseName)
	assert.True(t, fs.Sets[0].IsPR)

	assert.Equal(t, "Solid squat PR, keep the depth.", rec.notes[res.SessionID])
}

func TestWrapupSkipsEmptyNote(t *testing.T) {
	rec := &fakeRecorder{}
	w := NewWrapup(rec, fixedNote(""), quietLog())
	require.NoError(t, w.Finish(context.Background(), wrapupResult()))
	assert.Empty(t, rec.notes)

	w = NewWrapup(rec, nil, quietLog())
	require.NoError(t, w.Finish(context.Background(), wrapupResult()))
	assert.Empty(t, rec.notes)
}

func TestWrapupSaveError(t *testing.T) {
	rec := &fakeRecorder{finishErr: errors.New("connection refused")}
	w := NewWrapup(rec, fixedNote("never asked"), quietLog())
	err := w.Finish(context.Background(), wrapupResult())
	require.Error(t, err)
	assert.Empty(t, rec.notes)
}
