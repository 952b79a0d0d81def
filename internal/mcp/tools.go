package mcp

import (
	"context"
	"time"

	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/muscle"
	"github.com/claude/reprx/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last days days.
func defaultTimeRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("List completed and imported workout sessions, newest first. Each has duration, total volume (kg), exercise and set counts, personal records and the coach note."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 50.")),
)

var toolGetSetLogs = mcp.NewTool("get_set_logs",
	mcp.WithDescription("Query individual logged sets with weight, reps and personal record flag."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Exercise name (e.g. 'Bench Press'). Matched by its slug.")),
	mcp.WithNumber("limit", mcp.Description("Maximum sets to return. Defaults to 500.")),
)

var toolGetWeekPlan = mcp.NewTool("get_week_plan",
	mcp.WithDescription("The active program's training days (1=Monday..7=Sunday) with prescribed exercises, sets, rep ranges, starting weights and rest."),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Lifetime totals: sessions, sets, volume, personal records and the most trained exercises with their best weight."),
)

var toolResolveMuscle = mcp.NewTool("resolve_muscle",
	mcp.WithDescription("Map a muscle label and/or exercise name to the app's canonical muscle group, as used for muscle diagrams."),
	mcp.WithString("label", mcp.Description("Free-text muscle label (e.g. 'lats', 'rear delts')")),
	mcp.WithString("exercise", mcp.Description("Exercise name used when the label is missing or unknown (e.g. 'Romanian Deadlift')")),
)

// --- Tool handlers ---

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.QuerySessions(ctx, start, end, req.GetInt("limit", 50))
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSetLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	f := storage.SetLogFilter{Start: start, End: end, Limit: req.GetInt("limit", 500)}
	if name := req.GetString("exercise", ""); name != "" {
		f.ExerciseSlug = models.Slug(name)
	}

	sets, err := h.ds.QuerySetLogs(ctx, f)
	if err != nil {
		h.log.Error("mcp get_set_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sets)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeekPlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.ds.GetTemplatesForWeek(ctx)
	if err != nil {
		h.log.Error("mcp get_week_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetStats(ctx)
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) resolveMuscle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label := req.GetString("label", "")
	exercise := req.GetString("exercise", "")
	if label == "" && exercise == "" {
		return mcp.NewToolResultError("label or exercise is required"), nil
	}

	out := map[string]any{"resolved": false}
	if g, ok := muscle.Resolve(label, exercise); ok {
		out["resolved"] = true
		out["group"] = g
		out["posterior"] = muscle.IsPosterior(g)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
