// Package media decides what to show for an exercise: a demo GIF, a muscle
// diagram or a placeholder.
package media

import (
	"sync"

	"github.com/claude/reprx/internal/muscle"
	"github.com/claude/reprx/internal/workout"
)

// Kind is the visual treatment chosen for an exercise.
type Kind string

const (
	KindDemo        Kind = "demo"
	KindDiagram     Kind = "diagram"
	KindPlaceholder Kind = "placeholder"
)

// View is the body orientation for the muscle diagram.
type View string

const (
	ViewAnterior  View = "anterior"
	ViewPosterior View = "posterior"
	ViewBoth      View = "both"
)

// Input is the exercise metadata available to the resolver. Empty strings
// mean the value is unknown.
type Input struct {
	ExerciseName    string
	GifURL          string
	PrimaryLabel    string
	SecondaryLabels []string
}

// Visual is the resolved presentation of one exercise.
type Visual struct {
	Kind        Kind           `json:"kind"`
	GifURL      string         `json:"gif_url,omitempty"`
	Primary     muscle.Group   `json:"primary,omitempty"`
	Muscles     []muscle.Group `json:"muscles"`
	View        View           `json:"view,omitempty"`
	Label       string         `json:"label,omitempty"`
	TutorialURL string         `json:"tutorial_url"`
}

// Resolver picks visuals and remembers demo URLs that clients failed to load.
// It is safe for concurrent use.
type Resolver struct {
	mu     sync.RWMutex
	broken map[string]bool
}

// NewResolver returns a Resolver with no broken URLs.
func NewResolver() *Resolver {
	return &Resolver{broken: make(map[string]bool)}
}

// MarkBroken records that url failed to load. Later resolutions of that URL
// fall back to the diagram.
func (r *Resolver) MarkBroken(url string) {
	if url == "" {
		return
	}
	r.mu.Lock()
	r.broken[url] = true
	r.mu.Unlock()
}

// IsBroken reports whether url was marked broken.
func (r *Resolver) IsBroken(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.broken[url]
}

// Resolve chooses the visual for in. A usable demo URL wins; otherwise the
// resolved muscles are drawn; with no muscles a labelled placeholder is shown.
func (r *Resolver) Resolve(in Input) Visual {
	primary, hasPrimary := muscle.Resolve(in.PrimaryLabel, in.ExerciseName)

	var secondaries []muscle.Group
	for _, label := range in.SecondaryLabels {
		if g, ok := muscle.FromLabel(label); ok {
			secondaries = append(secondaries, g)
		}
	}

	v := Visual{
		Primary:     primary,
		Muscles:     muscle.Dedupe(append([]muscle.Group{primary}, secondaries...)...),
		TutorialURL: TutorialURL(in.ExerciseName),
		Label:       in.PrimaryLabel,
	}

	switch {
	case hasPrimary && muscle.IsPosterior(primary):
		v.View = ViewPosterior
	case hasPrimary:
		v.View = ViewAnterior
	case len(v.Muscles) > 0:
		v.View = ViewBoth
	}

	switch {
	case in.GifURL != "" && !r.IsBroken(in.GifURL):
		v.Kind = KindDemo
		v.GifURL = in.GifURL
	case len(v.Muscles) > 0:
		v.Kind = KindDiagram
	default:
		v.Kind = KindPlaceholder
		v.Label = in.ExerciseName
	}
	return v
}

// ResolveExercise is Resolve for a planned exercise.
func (r *Resolver) ResolveExercise(ex workout.PlannedExercise) Visual {
	return r.Resolve(Input{
		ExerciseName:    ex.Name,
		GifURL:          ex.GifURL,
		PrimaryLabel:    ex.PrimaryMuscle,
		SecondaryLabels: ex.SecondaryMuscles,
	})
}

// DayMuscles collects the distinct groups worked by a day's exercises, in
// first-seen order.
func DayMuscles(exercises []workout.PlannedExercise) []muscle.Group {
	var all []muscle.Group
	for _, ex := range exercises {
		if g, ok := muscle.Resolve(ex.PrimaryMuscle, ex.Name); ok {
			all = append(all, g)
		}
		for _, label := range ex.SecondaryMuscles {
			if g, ok := muscle.FromLabel(label); ok {
				all = append(all, g)
			}
		}
	}
	return muscle.Dedupe(all...)
}
