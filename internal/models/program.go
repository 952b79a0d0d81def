package models

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedProgram is the program returned by the coach model.
type GeneratedProgram struct {
	Name      string       `json:"name"`
	WeekCount int          `json:"weekCount"`
	Split     []ProgramDay `json:"split"`
}

// ProgramDay is one training day of a generated program. DayOfWeek runs
// 1 (Monday) to 7 (Sunday).
type ProgramDay struct {
	DayOfWeek int               `json:"dayOfWeek"`
	Label     string            `json:"label"`
	Exercises []ProgramExercise `json:"exercises"`
}

// ProgramExercise is one prescribed exercise of a generated program day.
type ProgramExercise struct {
	Name             string   `json:"name"`
	Sets             int      `json:"sets"`
	RepsMin          int      `json:"repsMin"`
	RepsMax          int      `json:"repsMax"`
	StartingWeightKg float64  `json:"startingWeightKg"`
	RestSeconds      int      `json:"restSeconds"`
	InjuryNote       *string  `json:"injuryNote"`
	PrimaryMuscle    *string  `json:"primaryMuscle,omitempty"`
	SecondaryMuscles []string `json:"secondaryMuscles,omitempty"`
}

// Program is a stored program header.
type Program struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	WeekCount int       `json:"week_count"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Template is a stored workout day with its exercises in order.
type Template struct {
	ID        uuid.UUID          `json:"id"`
	ProgramID uuid.UUID          `json:"program_id"`
	DayOfWeek int                `json:"day_of_week"`
	Label     string             `json:"label"`
	Exercises []TemplateExercise `json:"exercises"`
}

// TemplateExercise is one prescribed exercise of a stored template, joined
// with whatever media metadata is cached for it.
type TemplateExercise struct {
	Position         int      `json:"position"`
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	Sets             int      `json:"sets"`
	RepsMin          int      `json:"reps_min"`
	RepsMax          int      `json:"reps_max"`
	StartingWeightKg float64  `json:"starting_weight_kg"`
	RestSeconds      int      `json:"rest_seconds"`
	InjuryNote       *string  `json:"injury_note,omitempty"`
	GifURL           *string  `json:"gif_url,omitempty"`
	PrimaryMuscle    *string  `json:"primary_muscle,omitempty"`
	SecondaryMuscles []string `json:"secondary_muscles,omitempty"`
}
