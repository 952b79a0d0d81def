package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/reprx/internal/ingest"
	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/storage"
)

// HistoryWriter stores imported sessions.
type HistoryWriter interface {
	InsertHistory(ctx context.Context, h storage.HistorySession) (int64, error)
}

// Provider processes Alpha Progression CSV exports into session history.
type Provider struct {
	db  HistoryWriter
	log *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(db HistoryWriter, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a CSV export and stores each session with its working sets.
// Re-importing the same export replaces the sessions it wrote before.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	for _, s := range sessions {
		h, warmups := History(s)
		result.WarmupsSkipped += warmups
		result.SetsReceived += len(h.Sets)
		if len(h.Sets) == 0 {
			p.log.Debug("skipping session without working sets", "session", s.Name, "date", s.Date)
			continue
		}
		n, err := p.db.InsertHistory(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("storing session %s: %w", s.Date.Format("2006-01-02"), err)
		}
		result.SessionsInserted++
		result.SetsInserted += n
	}
	return result, nil
}

// History converts a parsed session into set logs keyed by exercise slug.
// Warmups are dropped and their count returned. Set numbers count per slug
// across the whole session.
func History(s Session) (storage.HistorySession, int) {
	h := storage.HistorySession{Name: s.Name, StartedAt: s.Date, Duration: s.Duration}
	next := make(map[string]int)
	warmups := 0
	for _, ex := range s.Exercises {
		slug := models.Slug(ex.Name)
		if slug == "" {
			continue
		}
		for _, set := range ex.Sets {
			if set.IsWarmup {
				warmups++
				continue
			}
			next[slug]++
			h.Sets = append(h.Sets, models.SetLogRow{
				ExerciseSlug: slug,
				ExerciseName: ex.Name,
				SetNumber:    next[slug],
				WeightKg:     set.WeightKg,
				Reps:         set.Reps,
				LoggedAt:     s.Date,
			})
		}
	}
	return h, warmups
}
