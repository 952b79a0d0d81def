package models

import "testing"

// TestSlug verifies names from the generator, the importer and the UI all
// collapse to the same key.
func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Barbell Bench Press", "barbell-bench-press"},
		{"  Lat Pulldown ", "lat-pulldown"},
		{"Pull-Up", "pull-up"},
		{"Romanian Deadlift (RDL)", "romanian-deadlift-rdl"},
		{"Bench Press: Close Grip", "bench-press-close-grip"},
		{"Squat 2x", "squat-2x"},
		{"Cable   Fly", "cable-fly"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.name); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
