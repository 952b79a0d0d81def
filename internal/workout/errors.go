package workout

import "errors"

var (
	// ErrInvalidPlan is returned by Start for an empty plan or a malformed entry.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrPrematureAdvance is returned by Advance while sets remain unlogged.
	ErrPrematureAdvance = errors.New("exercise has unlogged sets")

	// ErrExerciseComplete is returned by LogSet once every target set of the
	// current exercise has been logged.
	ErrExerciseComplete = errors.New("all sets logged for exercise")

	// ErrSessionComplete is returned by commands issued after completion.
	ErrSessionComplete = errors.New("session complete")

	// ErrInvalidSet is returned by LogSet for negative weight or reps.
	ErrInvalidSet = errors.New("invalid set")
)
