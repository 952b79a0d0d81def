package models

import (
	"time"

	"github.com/google/uuid"
)

// Session statuses.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
	SessionImported   = "imported"
)

// ExerciseRow is a row of the exercises media cache. Nil fields are unknown.
type ExerciseRow struct {
	Slug             string
	Name             string
	GifURL           *string
	PrimaryMuscle    *string
	SecondaryMuscles []string
	UpdatedAt        time.Time
}

// SessionRow is a row of the workout_sessions table.
type SessionRow struct {
	ID            uuid.UUID  `json:"id"`
	TemplateID    *uuid.UUID `json:"template_id,omitempty"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	DurationMins  *int       `json:"duration_mins,omitempty"`
	TotalVolumeKg float64    `json:"total_volume_kg"`
	ExerciseCount int        `json:"exercise_count"`
	SetCount      int        `json:"set_count"`
	PRCount       int        `json:"pr_count"`
	AINote        *string    `json:"ai_note,omitempty"`
}

// SetLogRow is a row of the set_logs table.
type SetLogRow struct {
	SessionID    uuid.UUID `json:"session_id"`
	ExerciseSlug string    `json:"exercise_slug"`
	ExerciseName string    `json:"exercise_name"`
	SetNumber    int       `json:"set_number"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	IsPR         bool      `json:"is_pr"`
	LoggedAt     time.Time `json:"logged_at"`
}
