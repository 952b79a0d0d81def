package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/claude/reprx/internal/coach"
	"github.com/claude/reprx/internal/media"
	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/muscle"
	"github.com/claude/reprx/internal/session"
	"github.com/claude/reprx/internal/storage"
	"github.com/claude/reprx/internal/workout"
	"github.com/google/uuid"
)

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	token, ok := s.auth.Unlock(body.PIN)
	if !ok {
		s.log.Warn("unlock rejected", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect pin"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	s.auth.Revoke(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.db.GetProfile(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if msg := validateProfile(p); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	if err := s.db.SaveProfile(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleOnboarding stores the profile, generates and stores a program, then
// warms the exercise media cache for every exercise in it.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	if s.coach == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "program generation not configured"})
		return
	}
	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if msg := validateProfile(p); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	ctx := r.Context()
	if err := s.db.SaveProfile(ctx, p); err != nil {
		s.writeError(w, err)
		return
	}
	gp, err := s.coach.GenerateProgram(ctx, p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	prog, err := s.db.SaveProgram(ctx, *gp)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("program saved", "program", prog.ID, "name", prog.Name, "days", len(gp.Split))

	if s.exercises != nil {
		seen := make(map[string]bool)
		for _, day := range gp.Split {
			for _, ex := range day.Exercises {
				slug := models.Slug(ex.Name)
				if seen[slug] {
					continue
				}
				seen[slug] = true
				s.exercises.Lookup(ctx, ex.Name, ex.PrimaryMuscle, ex.SecondaryMuscles)
			}
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"program": prog,
		"split":   gp.Split,
	})
}

type dayPlan struct {
	Template *models.Template `json:"template"`
	Muscles  []muscle.Group   `json:"muscles"`
	Media    []media.Visual   `json:"media"`
}

func (s *Server) planFor(t *models.Template) dayPlan {
	plan := storage.TemplatePlan(t)
	visuals := make([]media.Visual, 0, len(plan))
	for _, ex := range plan {
		visuals = append(visuals, s.media.ResolveExercise(ex))
	}
	return dayPlan{Template: t, Muscles: media.DayMuscles(plan), Media: visuals}
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"rest_day": true}
	if id, ok := s.sessions.Active(); ok {
		resp["active_session"] = id
	}

	t, err := s.db.GetTemplateForDay(r.Context(), s.now().Weekday())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusOK, resp)
		return
	case err != nil:
		s.writeError(w, err)
		return
	}
	resp["rest_day"] = false
	resp["day"] = s.planFor(t)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	templates, err := s.db.GetTemplatesForWeek(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	days := make([]dayPlan, 0, len(templates))
	for i := range templates {
		days = append(days, s.planFor(&templates[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"today": storage.DayOfWeek(s.now().Weekday()),
		"days":  days,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r, 90)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sessions, err := s.db.QuerySessions(r.Context(), start, end, queryInt(r, "limit", 30))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSetLogs(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r, 90)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	f := storage.SetLogFilter{
		Start: start,
		End:   end,
		Limit: queryInt(r, "limit", 500),
	}
	if name := r.URL.Query().Get("exercise"); name != "" {
		f.ExerciseSlug = models.Slug(name)
	}
	if sid := r.URL.Query().Get("session"); sid != "" {
		id, err := uuid.Parse(sid)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
			return
		}
		f.SessionID = id
	}
	sets, err := s.db.QuerySetLogs(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMediaBroken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url required"})
		return
	}
	s.media.MarkBroken(body.URL)
	w.WriteHeader(http.StatusNoContent)
}

// maxImportBytes caps an uploaded export.
const maxImportBytes = 20 << 20

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "import not enabled"})
		return
	}
	result, err := s.history.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		s.log.Error("alpha import error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("alpha import", "sessions", result.SessionsInserted, "sets", result.SetsInserted)
	writeJSON(w, http.StatusOK, result)
}

func validateProfile(p models.Profile) string {
	switch {
	case !slices.Contains(models.Goals, p.Goal):
		return "unknown goal"
	case !slices.Contains(models.GymTypes, p.GymType):
		return "unknown gym_type"
	case p.DaysPerWeek < 1 || p.DaysPerWeek > 7:
		return "days_per_week must be 1-7"
	}
	for _, in := range p.Injuries {
		if in.BodyPart == "" || in.PainScale < 0 || in.PainScale > 10 {
			return "injuries need a body_part and a pain_scale of 0-10"
		}
	}
	return ""
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workout.ErrInvalidPlan), errors.Is(err, coach.ErrInvalidProgram):
		status = http.StatusBadRequest
	case errors.Is(err, workout.ErrInvalidSet):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, workout.ErrPrematureAdvance),
		errors.Is(err, workout.ErrExerciseComplete),
		errors.Is(err, workout.ErrSessionComplete),
		errors.Is(err, session.ErrAlreadyActive):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrClosed), errors.Is(err, coach.ErrDisabled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

// parseTimeRange reads start/end query parameters (RFC 3339 or YYYY-MM-DD),
// defaulting to the last defaultDays days.
func parseTimeRange(r *http.Request, defaultDays int) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if endStr == "" {
		end = time.Now().Add(time.Minute)
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}

	if startStr == "" {
		start = end.AddDate(0, 0, -defaultDays)
		return
	}
	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return
}
