package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/workout"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FinishedSession is everything persisted when a session completes.
type FinishedSession struct {
	ID      uuid.UUID
	EndedAt time.Time
	Summary workout.Summary
	Sets    []models.SetLogRow
}

// CreateSession inserts an in-progress session row. An empty name takes the
// template's label.
func (db *DB) CreateSession(ctx context.Context, s models.SessionRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_sessions (id, template_id, name, status, started_at)
		 VALUES ($1, $2, COALESCE(NULLIF($3, ''), (SELECT label FROM workout_templates WHERE id = $2), ''), $4, $5)`,
		s.ID, s.TemplateID, s.Name, models.SessionInProgress, s.StartedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// FinishSession writes the set log and the summary totals in one transaction
// and marks the session completed.
func (db *DB) FinishSession(ctx context.Context, fs FinishedSession) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertSetLogs(ctx, tx, fs.ID, fs.Sets); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE workout_sessions SET status = $2, ended_at = $3, duration_mins = $4,
		 total_volume_kg = $5, exercise_count = $6, set_count = $7, pr_count = $8
		 WHERE id = $1`,
		fs.ID, models.SessionCompleted, fs.EndedAt, fs.Summary.DurationMins,
		fs.Summary.TotalVolumeKg, fs.Summary.ExerciseCount, fs.Summary.SetCount, fs.Summary.PRCount)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", fs.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", fs.ID, ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing session %s: %w", fs.ID, err)
	}
	return nil
}

// ErrDuplicateSet is returned when a set log repeats an exercise and set number.
var ErrDuplicateSet = errors.New("duplicate set log")

// checkSetKeys rejects set logs that would collide on the set_logs primary key.
func checkSetKeys(sets []models.SetLogRow) error {
	type key struct {
		slug string
		set  int
	}
	seen := make(map[key]bool, len(sets))
	for _, s := range sets {
		k := key{s.ExerciseSlug, s.SetNumber}
		if seen[k] {
			return fmt.Errorf("%w: %s set %d", ErrDuplicateSet, s.ExerciseSlug, s.SetNumber)
		}
		seen[k] = true
	}
	return nil
}

func insertSetLogs(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, sets []models.SetLogRow) error {
	if len(sets) == 0 {
		return nil
	}
	if err := checkSetKeys(sets); err != nil {
		return err
	}

	query := `INSERT INTO set_logs (session_id, exercise_slug, exercise_name, set_number, weight_kg, reps, is_pr, logged_at) VALUES `
	args := make([]any, 0, len(sets)*8)
	valueStrings := make([]string, 0, len(sets))

	for i, s := range sets {
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, sessionID, s.ExerciseSlug, s.ExerciseName, s.SetNumber, s.WeightKg, s.Reps, s.IsPR, s.LoggedAt)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting set logs: %w", err)
	}
	return nil
}

// SetSessionNote stores the coach note shown on the session summary.
func (db *DB) SetSessionNote(ctx context.Context, id uuid.UUID, note string) error {
	_, err := db.Pool.Exec(ctx, `UPDATE workout_sessions SET ai_note = $2 WHERE id = $1`, id, note)
	if err != nil {
		return fmt.Errorf("updating session note: %w", err)
	}
	return nil
}

// AbandonSession marks an in-progress session abandoned. Nothing is logged.
func (db *DB) AbandonSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE workout_sessions SET status = $2, ended_at = $3
		 WHERE id = $1 AND status = $4`,
		id, models.SessionAbandoned, at, models.SessionInProgress)
	if err != nil {
		return fmt.Errorf("abandoning session %s: %w", id, err)
	}
	return nil
}

// GetSession returns one session row.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.SessionRow, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM workout_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		return nil, notFound(err, "session")
	}
	return s, nil
}

// QuerySessions returns completed and imported sessions started in
// [start, end), newest first.
func (db *DB) QuerySessions(ctx context.Context, start, end time.Time, limit int) ([]models.SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions
		 WHERE started_at >= $1 AND started_at < $2 AND status IN ($3, $4)
		 ORDER BY started_at DESC
		 LIMIT $5`,
		start, end, models.SessionCompleted, models.SessionImported, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionRow
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

const sessionColumns = `id, template_id, name, status, started_at, ended_at, duration_mins,
	total_volume_kg, exercise_count, set_count, pr_count, ai_note`

func scanSession(row pgx.Row) (*models.SessionRow, error) {
	var s models.SessionRow
	if err := row.Scan(&s.ID, &s.TemplateID, &s.Name, &s.Status, &s.StartedAt, &s.EndedAt, &s.DurationMins,
		&s.TotalVolumeKg, &s.ExerciseCount, &s.SetCount, &s.PRCount, &s.AINote); err != nil {
		return nil, err
	}
	return &s, nil
}
