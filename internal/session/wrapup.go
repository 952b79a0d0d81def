package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/storage"
	"github.com/claude/reprx/internal/workout"
	"github.com/google/uuid"
)

// Recorder persists completed sessions.
type Recorder interface {
	FinishSession(ctx context.Context, fs storage.FinishedSession) error
	SetSessionNote(ctx context.Context, id uuid.UUID, note string) error
}

// NoteWriter produces the one-line coach note for a summary. An empty string
// means no note.
type NoteWriter interface {
	SessionNote(ctx context.Context, s workout.Summary) string
}

// Wrapup is the Finisher used in production: it stores the set log with the
// session totals and then asks for a coach note.
type Wrapup struct {
	rec   Recorder
	notes NoteWriter
	log   *slog.Logger
}

// NewWrapup creates a Wrapup. notes may be nil to skip coach notes.
func NewWrapup(rec Recorder, notes NoteWriter, log *slog.Logger) *Wrapup {
	return &Wrapup{rec: rec, notes: notes, log: log}
}

// Finish implements Finisher.
func (w *Wrapup) Finish(ctx context.Context, r Result) error {
	summary := workout.Summarize(r.Log, r.StartedAt, r.EndedAt)

	names := make(map[string]string, len(r.Plan))
	for _, ex := range r.Plan {
		names[ex.ExerciseID] = ex.Name
	}
	sets := make([]models.SetLogRow, 0, len(r.Log))
	for _, e := range r.Log {
		sets = append(sets, models.SetLogRow{
			SessionID:    r.SessionID,
			ExerciseSlug: e.ExerciseID,
			ExerciseName: names[e.ExerciseID],
			SetNumber:    e.SetNumber,
			WeightKg:     e.WeightKg,
			Reps:         e.Reps,
			IsPR:         e.IsPersonalRecord,
			LoggedAt:     e.LoggedAt,
		})
	}

	if err := w.rec.FinishSession(ctx, storage.FinishedSession{
		ID:      r.SessionID,
		EndedAt: r.EndedAt,
		Summary: summary,
		Sets:    sets,
	}); err != nil {
		return fmt.Errorf("saving session %s: %w", r.SessionID, err)
	}
	w.log.Info("session saved", "session", r.SessionID,
		"sets", summary.SetCount, "volume_kg", summary.TotalVolumeKg, "prs", summary.PRCount)

	if w.notes == nil {
		return nil
	}
	note := w.notes.SessionNote(ctx, summary)
	if note == "" {
		return nil
	}
	if err := w.rec.SetSessionNote(ctx, r.SessionID, note); err != nil {
		return fmt.Errorf("saving note for %s: %w", r.SessionID, err)
	}
	return nil
}
