package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/reprx/internal/metrics"
	"github.com/claude/reprx/internal/models"
)

var (
	// ErrDisabled is returned when no Groq API key is configured.
	ErrDisabled = errors.New("coach: no api key configured")
	// ErrInvalidProgram wraps structural problems in a generated program.
	ErrInvalidProgram = errors.New("invalid generated program")
)

// GenerateProgram asks the model for a four-week program built around the
// profile's goal, equipment and injuries.
func (c *Client) GenerateProgram(ctx context.Context, p models.Profile) (*models.GeneratedProgram, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	content, err := c.chat(ctx, ChatRequest{
		Model:          c.cfg.ProgramModel,
		Messages:       []Message{{Role: "user", Content: programPrompt(p)}},
		Temperature:    0.3,
		MaxTokens:      4096,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("generating program: %w", err)
	}

	var prog models.GeneratedProgram
	if err := json.Unmarshal([]byte(content), &prog); err != nil {
		c.metrics.CounterExternalFailures.WithLabelValues(metrics.ServiceGroq).Inc()
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	if err := ValidateProgram(&prog); err != nil {
		return nil, err
	}
	c.log.Info("program generated", "name", prog.Name, "days", len(prog.Split))
	return &prog, nil
}

// ValidateProgram checks the structure of a generated program and fills in
// a missing week count.
func ValidateProgram(p *models.GeneratedProgram) error {
	if len(p.Split) == 0 {
		return fmt.Errorf("%w: no training days", ErrInvalidProgram)
	}
	if p.WeekCount <= 0 {
		p.WeekCount = 4
	}
	seen := make(map[int]bool, len(p.Split))
	for i, day := range p.Split {
		if day.DayOfWeek < 1 || day.DayOfWeek > 7 {
			return fmt.Errorf("%w: day %d has dayOfWeek %d", ErrInvalidProgram, i, day.DayOfWeek)
		}
		if seen[day.DayOfWeek] {
			return fmt.Errorf("%w: dayOfWeek %d repeated", ErrInvalidProgram, day.DayOfWeek)
		}
		seen[day.DayOfWeek] = true
		if len(day.Exercises) == 0 {
			return fmt.Errorf("%w: day %d has no exercises", ErrInvalidProgram, day.DayOfWeek)
		}
		slugs := make(map[string]bool, len(day.Exercises))
		for j, ex := range day.Exercises {
			slug := models.Slug(ex.Name)
			repeated := slugs[slug]
			slugs[slug] = true
			switch {
			case slug == "":
				return fmt.Errorf("%w: day %d exercise %d has no name", ErrInvalidProgram, day.DayOfWeek, j)
			case repeated:
				return fmt.Errorf("%w: day %d lists %q twice", ErrInvalidProgram, day.DayOfWeek, ex.Name)
			case ex.Sets <= 0:
				return fmt.Errorf("%w: %q has %d sets", ErrInvalidProgram, ex.Name, ex.Sets)
			case ex.RepsMin <= 0 || ex.RepsMax < ex.RepsMin:
				return fmt.Errorf("%w: %q has reps %d-%d", ErrInvalidProgram, ex.Name, ex.RepsMin, ex.RepsMax)
			case ex.StartingWeightKg < 0 || ex.RestSeconds < 0:
				return fmt.Errorf("%w: %q has negative weight or rest", ErrInvalidProgram, ex.Name)
			}
		}
	}
	return nil
}

func describeInjuries(injuries []models.Injury) string {
	if len(injuries) == 0 {
		return "no injuries"
	}
	parts := make([]string, 0, len(injuries))
	for _, in := range injuries {
		parts = append(parts, fmt.Sprintf("%s injury (pain %d/10)",
			strings.ReplaceAll(in.BodyPart, "_", " "), in.PainScale))
	}
	return strings.Join(parts, ", ")
}

func programPrompt(p models.Profile) string {
	var b strings.Builder
	b.WriteString("You are an expert strength and conditioning coach. Generate a personalized 4-week workout program in JSON format.\n\n")

	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Goal: %s\n", strings.ReplaceAll(p.Goal, "_", " "))
	fmt.Fprintf(&b, "- Training days per week: %d\n", p.DaysPerWeek)
	fmt.Fprintf(&b, "- Equipment: %s gym\n", strings.TrimSuffix(strings.ReplaceAll(p.GymType, "_", " "), " gym"))
	fmt.Fprintf(&b, "- Injuries: %s\n", describeInjuries(p.Injuries))
	if note := strings.TrimSpace(p.ExperienceNote); note != "" {
		fmt.Fprintf(&b, "- Experience: %s\n", note)
	}

	if len(p.Injuries) > 0 {
		b.WriteString("\nINJURY SAFETY RULES:\n")
		for _, in := range p.Injuries {
			part := strings.ReplaceAll(in.BodyPart, "_", " ")
			fmt.Fprintf(&b, "- Do not load the %s directly. Pick substitutes and set injuryNote on any exercise that still involves it.\n", part)
			if in.AvoidMovements != "" {
				fmt.Fprintf(&b, "- Avoid entirely: %s.\n", in.AvoidMovements)
			}
		}
	}

	b.WriteString("\nPROGRAMMING RULES:\n")
	fmt.Fprintf(&b, "- Exactly %d training days; dayOfWeek is 1=Monday through 7=Sunday, spread with rest days between.\n", p.DaysPerWeek)
	b.WriteString("- 3 to 4 exercises per day, 3 to 4 sets each.\n")
	b.WriteString("- Compound lifts 5-8 reps with 120-180s rest; accessories 8-15 reps with 60-90s rest.\n")
	b.WriteString("- Starting weights are conservative; use 0 for bodyweight movements.\n")
	b.WriteString("- Name the main muscle worked in primaryMuscle and up to three helpers in secondaryMuscles.\n")

	b.WriteString("\nRespond with JSON only, matching this shape:\n")
	b.WriteString(`{"name":"...","weekCount":4,"split":[{"dayOfWeek":1,"label":"Upper Body A","exercises":[{"name":"Bench Press","sets":3,"repsMin":6,"repsMax":8,"startingWeightKg":60,"restSeconds":120,"injuryNote":null,"primaryMuscle":"chest","secondaryMuscles":["triceps","front delts"]}]}]}`)
	return b.String()
}
