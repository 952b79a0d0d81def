package workout

import (
	"fmt"
	"time"
)

// EventType names a runtime transition.
type EventType string

const (
	EventSetLogged        EventType = "set_logged"
	EventRestStarted      EventType = "rest_started"
	EventRestTick         EventType = "rest_tick"
	EventRestEnded        EventType = "rest_ended"
	EventExerciseAdvanced EventType = "exercise_advanced"
	EventSessionCompleted EventType = "session_completed"
)

// Event is delivered to the observer after each transition, carrying the
// state as it stands once the transition has been applied.
type Event struct {
	Type  EventType    `json:"type"`
	Entry *SetLogEntry `json:"entry,omitempty"`
	State State        `json:"state"`
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithPriorBests seeds personal-record detection with the heaviest weight
// previously lifted per exercise ID.
func WithPriorBests(bests map[string]float64) Option {
	return func(r *Runtime) {
		for id, kg := range bests {
			r.priorBests[id] = kg
		}
	}
}

// WithObserver registers fn to receive every Event. fn runs synchronously on
// the caller's goroutine and must not call back into the Runtime.
func WithObserver(fn func(Event)) Option {
	return func(r *Runtime) { r.observer = fn }
}

// WithClock overrides the time source used to stamp set log entries.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) { r.now = now }
}

// Runtime drives one workout session through its plan. It is not safe for
// concurrent use; the session manager confines each Runtime to one goroutine.
type Runtime struct {
	plan     Plan
	exercise int
	set      int
	log      []SetLogEntry
	rest     RestTimer
	complete bool

	priorBests   map[string]float64
	sessionBests map[string]float64

	observer func(Event)
	now      func() time.Time
}

// Start validates plan and returns a runtime positioned at the first set of
// the first exercise with rest inactive.
func Start(plan Plan, opts ...Option) (*Runtime, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	r := &Runtime{
		plan:         append(Plan(nil), plan...),
		set:          1,
		priorBests:   make(map[string]float64),
		sessionBests: make(map[string]float64),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// LogSet records a completed set for the current exercise, advances the set
// number and starts the exercise's rest. Logging while resting restarts the
// countdown.
func (r *Runtime) LogSet(weightKg float64, reps int) (SetLogEntry, error) {
	if r.complete {
		return SetLogEntry{}, ErrSessionComplete
	}
	if weightKg < 0 || reps < 0 {
		return SetLogEntry{}, fmt.Errorf("%w: weight %.2f reps %d", ErrInvalidSet, weightKg, reps)
	}
	if r.IsExerciseComplete() {
		return SetLogEntry{}, fmt.Errorf("%w: %s", ErrExerciseComplete, r.current().ExerciseID)
	}

	ex := r.current()
	entry := SetLogEntry{
		ExerciseID:       ex.ExerciseID,
		SetNumber:        r.set,
		WeightKg:         weightKg,
		Reps:             reps,
		IsPersonalRecord: r.isPersonalRecord(ex.ExerciseID, weightKg, reps),
		LoggedAt:         r.now(),
	}
	if reps > 0 && weightKg > r.sessionBests[ex.ExerciseID] {
		r.sessionBests[ex.ExerciseID] = weightKg
	}

	r.log = append(r.log, entry)
	r.set++
	r.rest.Start(ex.RestSeconds)

	r.emit(EventSetLogged, &entry)
	if r.rest.Active() {
		r.emit(EventRestStarted, nil)
	}
	return entry, nil
}

func (r *Runtime) isPersonalRecord(exerciseID string, weightKg float64, reps int) bool {
	prior, ok := r.priorBests[exerciseID]
	if !ok || reps <= 0 {
		return false
	}
	return weightKg > prior && weightKg > r.sessionBests[exerciseID]
}

// Tick applies one second of rest. It reports whether the tick ended the
// rest; ticks while rest is inactive are ignored.
func (r *Runtime) Tick() bool {
	if !r.rest.Active() {
		return false
	}
	ended := r.rest.Tick()
	r.emit(EventRestTick, nil)
	if ended {
		r.emit(EventRestEnded, nil)
	}
	return ended
}

// DismissRest ends the current rest early. No-op when not resting.
func (r *Runtime) DismissRest() {
	if !r.rest.Active() {
		return
	}
	r.rest.Dismiss()
	r.emit(EventRestEnded, nil)
}

// IsExerciseComplete reports whether every target set of the current
// exercise has been logged.
func (r *Runtime) IsExerciseComplete() bool {
	if r.complete {
		return true
	}
	return r.set > r.current().TargetSets
}

// Advance moves past a completed exercise. On the last exercise it marks the
// session complete and reports true.
func (r *Runtime) Advance() (bool, error) {
	if r.complete {
		return true, ErrSessionComplete
	}
	if !r.IsExerciseComplete() {
		ex := r.current()
		return false, fmt.Errorf("%w: %s set %d of %d", ErrPrematureAdvance, ex.ExerciseID, r.set, ex.TargetSets)
	}

	r.rest.Dismiss()
	if r.exercise == len(r.plan)-1 {
		r.complete = true
		r.emit(EventSessionCompleted, nil)
		return true, nil
	}
	r.exercise++
	r.set = 1
	r.emit(EventExerciseAdvanced, nil)
	return false, nil
}

// CurrentTarget describes the exercise being worked. It reports false once
// the session is complete.
func (r *Runtime) CurrentTarget() (Target, bool) {
	if r.complete {
		return Target{}, false
	}
	ex := r.current()
	remaining := ex.TargetSets - r.set + 1
	if remaining < 0 {
		remaining = 0
	}
	return Target{
		PlannedExercise: ex,
		Index:           r.exercise,
		ExerciseCount:   len(r.plan),
		SetNumber:       r.set,
		RemainingSets:   remaining,
		IsLast:          r.exercise == len(r.plan)-1,
	}, true
}

// State returns a snapshot. The log slice is a copy.
func (r *Runtime) State() State {
	return State{
		CurrentExerciseIndex: r.exercise,
		CurrentSetNumber:     r.set,
		Log:                  r.Log(),
		RestActive:           r.rest.Active(),
		RestSecondsRemaining: r.rest.Remaining(),
		RestTotalSeconds:     r.rest.Total(),
		RestProgress:         r.rest.Progress(),
		ExerciseComplete:     r.IsExerciseComplete(),
		Complete:             r.complete,
	}
}

// Log returns a copy of the set log in logging order.
func (r *Runtime) Log() []SetLogEntry {
	return append([]SetLogEntry{}, r.log...)
}

// Plan returns a copy of the plan the runtime was started with.
func (r *Runtime) Plan() Plan {
	return append(Plan(nil), r.plan...)
}

// Complete reports whether the session has finished.
func (r *Runtime) Complete() bool { return r.complete }

// RestActive reports whether a rest countdown is running.
func (r *Runtime) RestActive() bool { return r.rest.Active() }

func (r *Runtime) current() PlannedExercise {
	return r.plan[r.exercise]
}

func (r *Runtime) emit(t EventType, entry *SetLogEntry) {
	if r.observer == nil {
		return
	}
	r.observer(Event{Type: t, Entry: entry, State: r.State()})
}
