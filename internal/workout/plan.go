// Package workout implements the session runtime: set progression, the rest
// timer between sets and the end-of-session summary.
package workout

import (
	"fmt"
	"time"
)

// PlannedExercise is one entry of a workout plan with its targets.
type PlannedExercise struct {
	ExerciseID       string   `json:"exercise_id"`
	Name             string   `json:"name"`
	TargetSets       int      `json:"target_sets"`
	TargetRepsMin    int      `json:"target_reps_min"`
	TargetRepsMax    int      `json:"target_reps_max"`
	TargetWeightKg   float64  `json:"target_weight_kg"`
	RestSeconds      int      `json:"rest_seconds"`
	PrimaryMuscle    string   `json:"primary_muscle,omitempty"`
	SecondaryMuscles []string `json:"secondary_muscles,omitempty"`
	GifURL           string   `json:"gif_url,omitempty"`
}

// Plan is the ordered list of exercises for one session.
type Plan []PlannedExercise

// Validate rejects plans that would produce an empty or endless logging phase.
// An exercise may appear only once, since set numbers are counted per
// exercise and a log entry is keyed by exercise and set number.
func (p Plan) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no exercises", ErrInvalidPlan)
	}
	seen := make(map[string]int, len(p))
	for i, ex := range p {
		first, repeated := seen[ex.ExerciseID]
		seen[ex.ExerciseID] = i
		switch {
		case ex.ExerciseID == "":
			return fmt.Errorf("%w: exercise %d has no id", ErrInvalidPlan, i)
		case repeated:
			return fmt.Errorf("%w: exercise %d (%s) repeats exercise %d", ErrInvalidPlan, i, ex.ExerciseID, first)
		case ex.TargetSets <= 0:
			return fmt.Errorf("%w: exercise %d (%s) target_sets = %d", ErrInvalidPlan, i, ex.ExerciseID, ex.TargetSets)
		case ex.TargetRepsMin <= 0:
			return fmt.Errorf("%w: exercise %d (%s) target_reps_min = %d", ErrInvalidPlan, i, ex.ExerciseID, ex.TargetRepsMin)
		case ex.TargetRepsMax < ex.TargetRepsMin:
			return fmt.Errorf("%w: exercise %d (%s) rep range %d-%d", ErrInvalidPlan, i, ex.ExerciseID, ex.TargetRepsMin, ex.TargetRepsMax)
		case ex.TargetWeightKg < 0:
			return fmt.Errorf("%w: exercise %d (%s) negative weight", ErrInvalidPlan, i, ex.ExerciseID)
		case ex.RestSeconds < 0:
			return fmt.Errorf("%w: exercise %d (%s) negative rest", ErrInvalidPlan, i, ex.ExerciseID)
		}
	}
	return nil
}

// TotalSets is the number of sets a full run of the plan logs.
func (p Plan) TotalSets() int {
	n := 0
	for _, ex := range p {
		n += ex.TargetSets
	}
	return n
}

// SetLogEntry records one completed set. Entries are never mutated.
type SetLogEntry struct {
	ExerciseID       string    `json:"exercise_id"`
	SetNumber        int       `json:"set_number"`
	WeightKg         float64   `json:"weight_kg"`
	Reps             int       `json:"reps"`
	IsPersonalRecord bool      `json:"is_pr"`
	LoggedAt         time.Time `json:"logged_at"`
}

// Target is the read-only view of the current exercise for display.
type Target struct {
	PlannedExercise
	Index         int  `json:"index"`
	ExerciseCount int  `json:"exercise_count"`
	SetNumber     int  `json:"set_number"`
	RemainingSets int  `json:"remaining_sets"`
	IsLast        bool `json:"is_last"`
}

// State is a snapshot of the runtime.
type State struct {
	CurrentExerciseIndex int           `json:"current_exercise_index"`
	CurrentSetNumber     int           `json:"current_set_number"`
	Log                  []SetLogEntry `json:"log"`
	RestActive           bool          `json:"rest_active"`
	RestSecondsRemaining int           `json:"rest_seconds_remaining"`
	RestTotalSeconds     int           `json:"rest_total_seconds"`
	RestProgress         float64       `json:"rest_progress"`
	ExerciseComplete     bool          `json:"exercise_complete"`
	Complete             bool          `json:"complete"`
}
