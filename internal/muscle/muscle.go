// Package muscle maps free-text muscle labels and exercise names to a closed
// set of canonical muscle groups used for illustration.
package muscle

import "strings"

// Group is a canonical muscle-group identifier. The zero value means
// "unresolved" and is never a valid group.
type Group string

const (
	Chest         Group = "chest"
	UpperBack     Group = "upper-back"
	LowerBack     Group = "lower-back"
	BackDeltoids  Group = "back-deltoids"
	FrontDeltoids Group = "front-deltoids"
	Trapezius     Group = "trapezius"
	Neck          Group = "neck"
	Biceps        Group = "biceps"
	Triceps       Group = "triceps"
	Forearm       Group = "forearm"
	Abs           Group = "abs"
	Obliques      Group = "obliques"
	Quadriceps    Group = "quadriceps"
	Hamstring     Group = "hamstring"
	Calves        Group = "calves"
	Gluteal       Group = "gluteal"
	Adductor      Group = "adductor"
	Abductors     Group = "abductors"
)

// All lists every canonical group, anterior groups first.
var All = []Group{
	Chest, FrontDeltoids, Biceps, Triceps, Forearm, Abs, Obliques,
	Quadriceps, Adductor, Abductors, Neck,
	Trapezius, UpperBack, LowerBack, BackDeltoids, Gluteal, Hamstring, Calves,
}

// posterior holds the groups drawn on the back view of the body.
var posterior = map[Group]bool{
	Trapezius:    true,
	UpperBack:    true,
	LowerBack:    true,
	BackDeltoids: true,
	Gluteal:      true,
	Hamstring:    true,
	Calves:       true,
}

// IsPosterior reports whether g is best shown on the back view.
func IsPosterior(g Group) bool {
	return posterior[g]
}

// Valid reports whether g is one of the canonical groups.
func (g Group) Valid() bool {
	for _, c := range All {
		if c == g {
			return true
		}
	}
	return false
}

// synonyms maps lowercase muscle labels (as returned by exercise databases or
// the program generator) to a canonical group.
var synonyms = map[string]Group{
	// Chest
	"chest": Chest, "upper chest": Chest, "pectorals": Chest,
	"pectoralis major": Chest, "pectoralis minor": Chest, "serratus anterior": Chest,

	// Back
	"lats": BackDeltoids, "latissimus": BackDeltoids, "latissimus dorsi": BackDeltoids,
	"upper back": UpperBack, "lower back": LowerBack, "erector spinae": LowerBack,
	"rhomboids": UpperBack, "rear deltoid": BackDeltoids, "posterior deltoid": BackDeltoids,
	"infraspinatus": BackDeltoids, "teres major": BackDeltoids, "teres minor": BackDeltoids,
	"levator scapulae": Trapezius,

	// Shoulders
	"shoulders": FrontDeltoids, "delts": FrontDeltoids, "deltoids": FrontDeltoids,
	"deltoid": FrontDeltoids, "anterior deltoid": FrontDeltoids, "front deltoid": FrontDeltoids,
	"front deltoids": FrontDeltoids, "lateral deltoid": FrontDeltoids, "medial deltoid": FrontDeltoids,

	// Traps and neck
	"traps": Trapezius, "trapezius": Trapezius, "neck": Neck,

	// Arms
	"biceps": Biceps, "biceps brachii": Biceps, "brachialis": Biceps,
	"brachioradialis": Forearm, "triceps": Triceps, "triceps brachii": Triceps,
	"forearms": Forearm, "forearm": Forearm, "wrist flexors": Forearm, "wrist extensors": Forearm,

	// Core
	"abs": Abs, "abdominals": Abs, "core": Abs, "obliques": Obliques, "oblique": Obliques,
	"external oblique": Obliques, "internal oblique": Obliques,
	"transverse abdominis": Abs, "rectus abdominis": Abs,

	// Legs
	"quads": Quadriceps, "quadriceps": Quadriceps, "quad": Quadriceps,
	"rectus femoris": Quadriceps, "vastus lateralis": Quadriceps, "vastus medialis": Quadriceps,
	"hamstrings": Hamstring, "hamstring": Hamstring, "biceps femoris": Hamstring,
	"glutes": Gluteal, "gluteal": Gluteal, "gluteus": Gluteal,
	"gluteus maximus": Gluteal, "gluteus medius": Gluteal,
	"calves": Calves, "calf": Calves, "gastrocnemius": Calves, "soleus": Calves,
	"hip flexors": Quadriceps, "adductors": Adductor, "adductor": Adductor,
	"abductors": Abductors, "abductor": Abductors,
}

// FromLabel looks label up in the synonym table, ignoring case and
// surrounding whitespace. A miss is not an error.
func FromLabel(label string) (Group, bool) {
	g, ok := synonyms[strings.ToLower(strings.TrimSpace(label))]
	return g, ok
}

// Resolve tries the label first and falls back to the exercise-name rules.
// The name is only consulted when the label does not map.
func Resolve(label, exerciseName string) (Group, bool) {
	if label != "" {
		if g, ok := FromLabel(label); ok {
			return g, true
		}
	}
	return FromExerciseName(exerciseName)
}

// Dedupe drops unresolved entries and duplicates, keeping first-seen order.
func Dedupe(groups ...Group) []Group {
	seen := make(map[Group]bool, len(groups))
	result := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		result = append(result, g)
	}
	return result
}
