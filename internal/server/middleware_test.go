package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/reprx/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

// TestRequestLogging verifies that the logging middleware calls the next handler and records status.
func TestRequestLogging(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

// TestRequestMetrics verifies requests are counted by method and status.
func TestRequestMetrics(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	handler := RequestMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for range 2 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}

	if got := counterValue(t, reg, "reprx_test_request", map[string]string{"method": "POST", "status": "418"}); got != 2 {
		t.Errorf("request counter = %v, want 2", got)
	}
}

// TestStatusWriterFlush verifies the wrapped writer still supports streaming.
func TestStatusWriterFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	var w http.ResponseWriter = &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	f, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("statusWriter does not implement http.Flusher")
	}
	f.Flush()
	if !rec.Flushed {
		t.Error("flush not passed through")
	}
}

// TestCORSHeaders verifies that CORS headers are set on responses.
func TestCORSHeaders(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q, want *", got)
	}
}

// TestCORSPreflight verifies that OPTIONS requests get 204 with CORS headers.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

// TestAuthPlainPIN verifies unlock with a plain PIN and token validity.
func TestAuthPlainPIN(t *testing.T) {
	a := NewAuth("123456", "")
	if _, ok := a.Unlock("654321"); ok {
		t.Fatal("wrong pin unlocked")
	}
	if _, ok := a.Unlock(""); ok {
		t.Fatal("empty pin unlocked")
	}
	token, ok := a.Unlock("123456")
	if !ok {
		t.Fatal("correct pin rejected")
	}
	if !a.Valid(token) {
		t.Error("fresh token not valid")
	}
	a.Revoke(token)
	if a.Valid(token) {
		t.Error("revoked token still valid")
	}
}

// TestAuthPINHash verifies a bcrypt hash is used instead of the plain PIN.
func TestAuthPINHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("2468"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	a := NewAuth("1111", string(hash))
	if _, ok := a.Unlock("1111"); ok {
		t.Error("plain pin accepted while hash configured")
	}
	if _, ok := a.Unlock("2468"); !ok {
		t.Error("hashed pin rejected")
	}
}

// TestAuthExpiry verifies tokens stop working after their TTL.
func TestAuthExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := NewAuth("1234", "")
	a.now = func() time.Time { return now }
	token, _ := a.Unlock("1234")

	now = now.Add(defaultTokenTTL - time.Minute)
	if !a.Valid(token) {
		t.Error("token expired early")
	}
	now = now.Add(2 * time.Minute)
	if a.Valid(token) {
		t.Error("token valid after ttl")
	}
}

// TestBearerToken verifies the header wins over the query parameter.
func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		url    string
		want   string
	}{
		{"header", "Bearer abc", "/", "abc"},
		{"query", "", "/?token=xyz", "xyz"},
		{"header wins", "Bearer abc", "/?token=xyz", "abc"},
		{"wrong scheme", "Basic abc", "/", ""},
		{"none", "", "/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(req); got != tt.want {
				t.Errorf("bearerToken = %q, want %q", got, tt.want)
			}
		})
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metricLoop:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metricLoop
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
