package coach

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/claude/reprx/internal/workout"
)

// SessionNote asks for a one-sentence observation on a finished session.
// Any failure yields "".
func (c *Client) SessionNote(ctx context.Context, s workout.Summary) string {
	if !c.Enabled() {
		return ""
	}
	content, err := c.chat(ctx, ChatRequest{
		Model:       c.cfg.NoteModel,
		Messages:    []Message{{Role: "user", Content: notePrompt(s)}},
		Temperature: 0.5,
		MaxTokens:   40,
	})
	if err != nil {
		c.log.Warn("session note failed", "error", err)
		return ""
	}
	return strings.TrimSpace(content)
}

func notePrompt(s workout.Summary) string {
	var b strings.Builder
	b.WriteString("You are a terse fitness coach. Reply with ONE sentence of at most 15 words: ")
	b.WriteString("a sharp, specific observation about this workout. No filler, no cheerleading.\n\n")
	fmt.Fprintf(&b, "Session: %d exercises, %dkg total volume, %d minutes",
		s.ExerciseCount, int(math.Round(s.TotalVolumeKg)), s.DurationMins)
	switch {
	case s.PRCount == 1:
		b.WriteString(", 1 personal record")
	case s.PRCount > 1:
		fmt.Fprintf(&b, ", %d personal records", s.PRCount)
	}
	b.WriteString(".")
	return b.String()
}
