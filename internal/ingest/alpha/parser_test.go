package alpha

import (
	"strings"
	"testing"
	"time"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseSessions verifies a two-session export: names, dates, durations
// and the exercise blocks with their warmup and working sets.
func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	s1 := sessions[0]
	if s1.Name != "Legs · Day 2 · Week 4 · Push-Pull-Legs" {
		t.Errorf("s1.Name = %q", s1.Name)
	}
	if want := time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC); !s1.Date.Equal(want) {
		t.Errorf("s1.Date = %v, want %v", s1.Date, want)
	}
	if s1.Duration != 62*time.Minute {
		t.Errorf("s1.Duration = %v, want 1h2m", s1.Duration)
	}
	if sessions[1].Duration != 72*time.Minute {
		t.Errorf("s2.Duration = %v, want 1h12m", sessions[1].Duration)
	}

	tests := []struct {
		name      string
		equipment string
		target    int
		sets      int
		working   int
	}{
		{"Hack Squats", "Machine", 8, 5, 3},
		{"Sumo Squats", "Smith machine", 10, 3, 2},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 4, 3},
		{"Reverse Lunges", "Dumbbells", 10, 3, 3},
		{"Standing Calf Raises", "Machine", 12, 4, 3},
		{"Hanging Leg Raises", "Bodyweight", 12, 3, 3},
	}
	if len(s1.Exercises) != len(tests) {
		t.Fatalf("s1 exercises = %d, want %d", len(s1.Exercises), len(tests))
	}
	for i, tt := range tests {
		ex := s1.Exercises[i]
		if ex.Number != i+1 {
			t.Errorf("exercise %d number = %d", i, ex.Number)
		}
		if ex.Name != tt.name {
			t.Errorf("exercise %d name = %q, want %q", i, ex.Name, tt.name)
		}
		if ex.Equipment != tt.equipment {
			t.Errorf("%s equipment = %q, want %q", tt.name, ex.Equipment, tt.equipment)
		}
		if ex.TargetReps != tt.target {
			t.Errorf("%s target = %d, want %d", tt.name, ex.TargetReps, tt.target)
		}
		if len(ex.Sets) != tt.sets {
			t.Errorf("%s sets = %d, want %d", tt.name, len(ex.Sets), tt.sets)
		}
		if got := len(ex.WorkingSets()); got != tt.working {
			t.Errorf("%s working sets = %d, want %d", tt.name, got, tt.working)
		}
	}

	bench := sessions[1].Exercises[0]
	last := bench.Sets[len(bench.Sets)-1]
	if last.WeightKg != 100 || last.Reps != 6 || last.IsWarmup {
		t.Errorf("last bench set = %+v", last)
	}
}

// TestParseWeight verifies European decimals and the +N bodyweight notation.
func TestParseWeight(t *testing.T) {
	tests := []struct {
		in     string
		weight float64
		bw     bool
	}{
		{"102,5", 102.5, false},
		{"115", 115, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{" 0,5 ", 0.5, false},
	}
	for _, tt := range tests {
		w, bw := parseWeight(tt.in)
		if w != tt.weight || bw != tt.bw {
			t.Errorf("parseWeight(%q) = (%v, %v), want (%v, %v)", tt.in, w, bw, tt.weight, tt.bw)
		}
	}
}

// TestParseDuration verifies the hour and minute forms of the session length.
func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1:02 hr", 62 * time.Minute},
		{"0:45 hr", 45 * time.Minute},
		{"45 min", 45 * time.Minute},
		{"", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestParseWarmups verifies warmup extraction from the exercise header.
func TestParseWarmups(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · +0 kg · 7 reps")
	if len(sets) != 2 {
		t.Fatalf("warmup sets = %d, want 2", len(sets))
	}
	if sets[0].WeightKg != 37.5 || sets[0].Reps != 9 || !sets[0].IsWarmup {
		t.Errorf("wu1 = %+v", sets[0])
	}
	if !sets[1].IsBodyweightPlus || sets[1].WeightKg != 0 {
		t.Errorf("wu2 = %+v", sets[1])
	}
}

// TestParseErrors verifies that orphaned rows are rejected.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"exercise without session", `"1. Bench Press · Barbell · 6 reps"`},
		{"set without exercise", "\"Push\";\"2026-02-17 5:04 h\";\"1:12 hr\"\n1;100;6;0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestParseEmpty verifies that empty input yields no sessions.
func TestParseEmpty(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}
