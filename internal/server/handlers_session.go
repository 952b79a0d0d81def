package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/claude/reprx/internal/media"
	"github.com/claude/reprx/internal/session"
	"github.com/claude/reprx/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// liveSession is a running session as returned to clients, with the media
// card for the current exercise.
type liveSession struct {
	session.Snapshot
	Media *media.Visual `json:"media,omitempty"`
}

func (s *Server) live(snap session.Snapshot) liveSession {
	ls := liveSession{Snapshot: snap}
	if snap.Target != nil {
		v := s.media.ResolveExercise(snap.Target.PlannedExercise)
		ls.Media = &v
	}
	return ls
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TemplateID uuid.UUID `json:"template_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TemplateID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "template_id required"})
		return
	}
	snap, err := s.sessions.Start(r.Context(), body.TemplateID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.live(snap))
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessions.Active()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	snap, err := s.sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.live(snap))
}

// handleGetSession returns the live state of a running session, or the
// stored record once it has finished.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := s.sessions.Snapshot(r.Context(), id)
	if err == nil {
		writeJSON(w, http.StatusOK, s.live(snap))
		return
	}
	if !errors.Is(err, session.ErrNotFound) {
		s.writeError(w, err)
		return
	}

	row, err := s.db.GetSession(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var body struct {
		WeightKg *float64 `json:"weight_kg"`
		Reps     *int     `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if body.WeightKg == nil || body.Reps == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight_kg and reps required"})
		return
	}
	entry, snap, err := s.sessions.LogSet(r.Context(), id, *body.WeightKg, *body.Reps)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entry":   entry,
		"session": s.live(snap),
	})
}

func (s *Server) handleDismissRest(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := s.sessions.DismissRest(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.live(snap))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	done, snap, err := s.sessions.Advance(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"complete": done,
		"session":  s.live(snap),
	})
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Abandon(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionEvents streams session events as server-sent events until the
// session ends or the client goes away.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	snap, err := s.sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	events, unsubscribe, err := s.sessions.Subscribe(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Send current state immediately
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", mustJSON(s.live(snap)))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, mustJSON(evt))
			flusher.Flush()

			if evt.Type == workout.EventSessionCompleted {
				return
			}
		}
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{}`
	}
	return string(b)
}
