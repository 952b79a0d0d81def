package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/reprx/internal/models"
	"github.com/google/uuid"
)

// SetLogFilter narrows QuerySetLogs. Zero fields are ignored.
type SetLogFilter struct {
	SessionID    uuid.UUID
	ExerciseSlug string
	Start        time.Time
	End          time.Time
	Limit        int
}

// QuerySetLogs returns set logs matching f, newest first.
func (db *DB) QuerySetLogs(ctx context.Context, f SetLogFilter) ([]models.SetLogRow, error) {
	if f.Limit <= 0 {
		f.Limit = 500
	}
	if f.End.IsZero() {
		f.End = time.Now().Add(24 * time.Hour)
	}
	var sessionID *uuid.UUID
	if f.SessionID != uuid.Nil {
		sessionID = &f.SessionID
	}
	var slug *string
	if f.ExerciseSlug != "" {
		slug = &f.ExerciseSlug
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT session_id, exercise_slug, exercise_name, set_number, weight_kg, reps, is_pr, logged_at
		 FROM set_logs
		 WHERE ($1::uuid IS NULL OR session_id = $1)
		 AND ($2::text IS NULL OR exercise_slug = $2)
		 AND logged_at >= $3 AND logged_at < $4
		 ORDER BY logged_at DESC, set_number ASC
		 LIMIT $5`,
		sessionID, slug, f.Start, f.End, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	defer rows.Close()

	var result []models.SetLogRow
	for rows.Next() {
		var r models.SetLogRow
		if err := rows.Scan(&r.SessionID, &r.ExerciseSlug, &r.ExerciseName, &r.SetNumber,
			&r.WeightKg, &r.Reps, &r.IsPR, &r.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetPriorBests returns the heaviest weight lifted for at least one rep per
// exercise slug. Slugs with no history are absent from the map.
func (db *DB) GetPriorBests(ctx context.Context, slugs []string) (map[string]float64, error) {
	bests := make(map[string]float64, len(slugs))
	if len(slugs) == 0 {
		return bests, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_slug, MAX(weight_kg)
		 FROM set_logs
		 WHERE exercise_slug = ANY($1) AND reps > 0
		 GROUP BY exercise_slug`,
		slugs)
	if err != nil {
		return nil, fmt.Errorf("querying prior bests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slug string
		var best float64
		if err := rows.Scan(&slug, &best); err != nil {
			return nil, fmt.Errorf("scanning prior best: %w", err)
		}
		bests[slug] = best
	}
	return bests, rows.Err()
}

// HistorySession is a past session brought in by the importer.
type HistorySession struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Sets      []models.SetLogRow
}

// historyNamespace seeds deterministic IDs for imported sessions.
var historyNamespace = uuid.MustParse("6f1d3c52-8f0e-4b8a-9a51-2d4d5b7c1e90")

// HistorySessionID is the stable ID an imported session is stored under, so
// re-importing the same export replaces rather than duplicates.
func HistorySessionID(startedAt time.Time) uuid.UUID {
	return uuid.NewSHA1(historyNamespace, []byte(startedAt.UTC().Format(time.RFC3339)))
}

// InsertHistory replaces an imported session and its sets. Returns the
// number of set rows written.
func (db *DB) InsertHistory(ctx context.Context, h HistorySession) (int64, error) {
	id := HistorySessionID(h.StartedAt)

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM workout_sessions WHERE id = $1`, id); err != nil {
		return 0, fmt.Errorf("deleting previous import %s: %w", id, err)
	}

	var volume float64
	exercises := make(map[string]bool)
	for _, s := range h.Sets {
		volume += s.WeightKg * float64(s.Reps)
		exercises[s.ExerciseSlug] = true
	}
	var durationMins *int
	if h.Duration > 0 {
		m := int(h.Duration.Round(time.Minute).Minutes())
		durationMins = &m
	}
	endedAt := h.StartedAt.Add(h.Duration)

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_sessions (id, name, status, started_at, ended_at, duration_mins,
		 total_volume_kg, exercise_count, set_count)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		id, h.Name, models.SessionImported, h.StartedAt, endedAt, durationMins,
		volume, len(exercises), len(h.Sets))
	if err != nil {
		return 0, fmt.Errorf("inserting imported session: %w", err)
	}

	if err := insertSetLogs(ctx, tx, id, h.Sets); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return int64(len(h.Sets)), nil
}
