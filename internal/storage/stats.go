package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/reprx/internal/models"
)

// TrainingStats holds aggregate statistics over all logged training.
type TrainingStats struct {
	TotalSessions   int64          `json:"total_sessions"`
	TotalSets       int64          `json:"total_sets"`
	TotalVolumeKg   float64        `json:"total_volume_kg"`
	TotalPRs        int64          `json:"total_prs"`
	EarliestSession *time.Time     `json:"earliest_session"`
	LatestSession   *time.Time     `json:"latest_session"`
	TopExercises    []ExerciseStat `json:"top_exercises"`
}

// ExerciseStat holds summary stats for a single exercise.
type ExerciseStat struct {
	Slug   string  `json:"slug"`
	Name   string  `json:"name"`
	Sets   int64   `json:"sets"`
	BestKg float64 `json:"best_kg"`
}

// GetStats returns aggregate statistics for completed and imported sessions.
func (db *DB) GetStats(ctx context.Context) (*TrainingStats, error) {
	stats := &TrainingStats{}

	// Sessions and date range
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(started_at), MAX(started_at)
		 FROM workout_sessions WHERE status IN ($1, $2)`,
		models.SessionCompleted, models.SessionImported,
	).Scan(&stats.TotalSessions, &stats.EarliestSession, &stats.LatestSession)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	// Sets, volume and records
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(weight_kg * reps), 0), COUNT(*) FILTER (WHERE is_pr)
		 FROM set_logs`,
	).Scan(&stats.TotalSets, &stats.TotalVolumeKg, &stats.TotalPRs)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	// Most trained exercises
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_slug, MAX(exercise_name), COUNT(*), MAX(weight_kg)
		 FROM set_logs
		 GROUP BY exercise_slug
		 ORDER BY COUNT(*) DESC
		 LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Slug, &s.Name, &s.Sets, &s.BestKg); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
