package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQuerySessions verifies the client sends the token and time range and
// parses the session list.
func TestQuerySessions(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/history": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("Authorization = %q, want Bearer tok", got)
			}
			if got := r.URL.Query().Get("start"); got != "2026-01-01T00:00:00Z" {
				t.Errorf("start = %q", got)
			}
			if got := r.URL.Query().Get("limit"); got != "10" {
				t.Errorf("limit = %q, want 10", got)
			}
			writeTestJSON(t, w, []models.SessionRow{{Name: "Upper A", Status: models.SessionCompleted, TotalVolumeKg: 4200}})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "tok")
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions, err := client.QuerySessions(context.Background(), start, start.AddDate(0, 0, 7), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].TotalVolumeKg != 4200 {
		t.Errorf("sessions = %+v", sessions)
	}
}

// TestQuerySetLogs verifies the exercise filter is forwarded.
func TestQuerySetLogs(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/history/sets": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("exercise"); got != "back-squat" {
				t.Errorf("exercise = %q, want back-squat", got)
			}
			writeTestJSON(t, w, []models.SetLogRow{{ExerciseSlug: "back-squat", WeightKg: 120, Reps: 5, IsPR: true}})
		},
	})
	defer ts.Close()

	sets, err := NewHTTPClient(ts.URL, "").QuerySetLogs(context.Background(), storage.SetLogFilter{
		ExerciseSlug: "back-squat",
		Start:        time.Now().AddDate(0, 0, -7),
		End:          time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sets) != 1 || !sets[0].IsPR {
		t.Errorf("sets = %+v", sets)
	}
}

// TestGetTemplatesForWeek verifies the week response is unwrapped into templates.
func TestGetTemplatesForWeek(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/week": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"today":2,"days":[{"template":{"day_of_week":1,"label":"Upper A","exercises":[{"slug":"bench-press","name":"Bench Press","sets":3}]},"muscles":["chest"],"media":[]}]}`))
		},
	})
	defer ts.Close()

	templates, err := NewHTTPClient(ts.URL, "").GetTemplatesForWeek(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(templates) != 1 || templates[0].Label != "Upper A" || templates[0].Exercises[0].Slug != "bench-press" {
		t.Errorf("templates = %+v", templates)
	}
}

// TestGetStats verifies stats decoding.
func TestGetStats(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, storage.TrainingStats{TotalSessions: 7, TotalPRs: 3})
		},
	})
	defer ts.Close()

	stats, err := NewHTTPClient(ts.URL, "").GetStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalSessions != 7 || stats.TotalPRs != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestHTTPClientError verifies non-200 responses surface as errors.
func TestHTTPClientError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
		},
	})
	defer ts.Close()

	if _, err := NewHTTPClient(ts.URL, "stale").GetStats(context.Background()); err == nil {
		t.Fatal("expected error for 401")
	}
}

// TestUnlock verifies the PIN exchange.
func TestUnlock(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/unlock": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["pin"] != "1234" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeTestJSON(t, w, map[string]string{"token": "fresh"})
		},
	})
	defer ts.Close()

	token, err := Unlock(context.Background(), ts.URL, "1234")
	if err != nil || token != "fresh" {
		t.Errorf("Unlock = %q, %v", token, err)
	}
	if _, err := Unlock(context.Background(), ts.URL, "0000"); err == nil {
		t.Error("expected error for wrong pin")
	}
}
