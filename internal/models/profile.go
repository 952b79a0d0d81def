package models

import "time"

// Profile is the onboarding answers that drive program generation.
type Profile struct {
	Goal           string    `json:"goal"`
	DaysPerWeek    int       `json:"days_per_week"`
	GymType        string    `json:"gym_type"`
	Injuries       []Injury  `json:"injuries"`
	ExperienceNote string    `json:"experience_note"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Injury is a body part to train around.
type Injury struct {
	BodyPart       string `json:"body_part"`
	PainScale      int    `json:"pain_scale"`
	AvoidMovements string `json:"avoid_movements,omitempty"`
}

// Goals accepted at onboarding.
var Goals = []string{"strength", "hypertrophy", "fat_loss", "general_fitness"}

// GymTypes accepted at onboarding.
var GymTypes = []string{"full_gym", "home_gym", "bodyweight"}
