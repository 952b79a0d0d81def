package muscle

import "regexp"

// rule tags exercise names matching pattern with a group.
type rule struct {
	pattern *regexp.Regexp
	group   Group
}

// nameRules is evaluated top to bottom and the first match wins. Names often
// match several rules ("Romanian Deadlift" hits both the deadlift and the
// romanian patterns), so the order here is the tie-break and must not be
// reshuffled or turned into a map.
var nameRules = []rule{
	{regexp.MustCompile(`(?i)press|fly|flye|push.?up|dip|pec`), Chest},
	{regexp.MustCompile(`(?i)row|pull.?down|pull.?up|chin.?up|lat`), BackDeltoids},
	{regexp.MustCompile(`(?i)deadlift|back.?ext|hyper|erect`), LowerBack},
	{regexp.MustCompile(`(?i)squat|leg.?press|lunge|step.?up|leg.?ext`), Quadriceps},
	{regexp.MustCompile(`(?i)leg.?curl|hamstring|rdl|romanian`), Hamstring},
	{regexp.MustCompile(`(?i)hip.?thrust|glute|donkey`), Gluteal},
	{regexp.MustCompile(`(?i)calf.raise|calf|gastro`), Calves},
	{regexp.MustCompile(`(?i)curl|bicep|hammer`), Biceps},
	{regexp.MustCompile(`(?i)tricep|skull.?crush|push.?down`), Triceps},
	{regexp.MustCompile(`(?i)shoulder|lateral.raise|overhead`), FrontDeltoids},
	{regexp.MustCompile(`(?i)shrug|trap`), Trapezius},
	{regexp.MustCompile(`(?i)crunch|sit.?up|plank|core`), Abs},
	{regexp.MustCompile(`(?i)oblique|twist`), Obliques},
	{regexp.MustCompile(`(?i)forearm|wrist`), Forearm},
}

// FromExerciseName guesses the primary group from an exercise name.
func FromExerciseName(name string) (Group, bool) {
	if name == "" {
		return "", false
	}
	for _, r := range nameRules {
		if r.pattern.MatchString(name) {
			return r.group, true
		}
	}
	return "", false
}
