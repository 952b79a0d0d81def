package workout

import (
	"math"
	"time"
)

// Summary holds the totals shown on the session wrap-up.
type Summary struct {
	DurationMins  int     `json:"duration_mins"`
	TotalVolumeKg float64 `json:"total_volume_kg"`
	ExerciseCount int     `json:"exercise_count"`
	SetCount      int     `json:"set_count"`
	PRCount       int     `json:"pr_count"`
}

// Summarize totals a set log. Volume is the sum of weight × reps; duration is
// rounded to whole minutes with a floor of one.
func Summarize(log []SetLogEntry, startedAt, endedAt time.Time) Summary {
	s := Summary{
		DurationMins: durationMins(startedAt, endedAt),
		SetCount:     len(log),
	}
	seen := make(map[string]bool)
	for _, e := range log {
		s.TotalVolumeKg += e.WeightKg * float64(e.Reps)
		if e.IsPersonalRecord {
			s.PRCount++
		}
		if !seen[e.ExerciseID] {
			seen[e.ExerciseID] = true
			s.ExerciseCount++
		}
	}
	return s
}

func durationMins(start, end time.Time) int {
	mins := int(math.Round(end.Sub(start).Minutes()))
	if mins < 1 {
		return 1
	}
	return mins
}
