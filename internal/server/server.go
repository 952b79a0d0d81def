package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/reprx/internal/exercisedb"
	"github.com/claude/reprx/internal/ingest"
	"github.com/claude/reprx/internal/media"
	"github.com/claude/reprx/internal/metrics"
	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/session"
	"github.com/claude/reprx/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the persistence the HTTP API reads and writes. *storage.DB
// satisfies it.
type Store interface {
	GetProfile(ctx context.Context) (*models.Profile, error)
	SaveProfile(ctx context.Context, p models.Profile) error
	SaveProgram(ctx context.Context, gp models.GeneratedProgram) (*models.Program, error)
	GetActiveProgram(ctx context.Context) (*models.Program, error)
	GetTemplatesForWeek(ctx context.Context) ([]models.Template, error)
	GetTemplateForDay(ctx context.Context, day time.Weekday) (*models.Template, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.SessionRow, error)
	QuerySessions(ctx context.Context, start, end time.Time, limit int) ([]models.SessionRow, error)
	QuerySetLogs(ctx context.Context, f storage.SetLogFilter) ([]models.SetLogRow, error)
	GetStats(ctx context.Context) (*storage.TrainingStats, error)
}

var _ Store = (*storage.DB)(nil)

// ProgramGenerator turns an onboarding profile into a program.
type ProgramGenerator interface {
	GenerateProgram(ctx context.Context, p models.Profile) (*models.GeneratedProgram, error)
}

// ExerciseLookup resolves exercise media.
type ExerciseLookup interface {
	Lookup(ctx context.Context, name string, hintPrimary *string, hintSecondary []string) exercisedb.Exercise
}

// HistoryIngester stores an uploaded training-log export.
type HistoryIngester interface {
	Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error)
}

// Deps are the Server's collaborators. Coach, Exercises and History may be nil.
type Deps struct {
	Store     Store
	Sessions  *session.Manager
	Coach     ProgramGenerator
	Exercises ExerciseLookup
	History   HistoryIngester
	Media     *media.Resolver
	Auth      *Auth
	Metrics   *metrics.Manager
	Gatherer  prometheus.Gatherer
	Log       *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        Store
	sessions  *session.Manager
	coach     ProgramGenerator
	exercises ExerciseLookup
	history   HistoryIngester
	media     *media.Resolver
	auth      *Auth
	metrics   *metrics.Manager
	gatherer  prometheus.Gatherer
	log       *slog.Logger
	now       func() time.Time
	router    chi.Router
	mcp       http.Handler
}

// New creates a new Server with all routes configured.
func New(d Deps) *Server {
	if d.Media == nil {
		d.Media = media.NewResolver()
	}
	s := &Server{
		db:        d.Store,
		sessions:  d.Sessions,
		coach:     d.Coach,
		exercises: d.Exercises,
		history:   d.History,
		media:     d.Media,
		auth:      d.Auth,
		metrics:   d.Metrics,
		gatherer:  d.Gatherer,
		log:       d.Log,
		now:       time.Now,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetMCP mounts an MCP transport under /mcp behind token auth.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Post("/api/v1/unlock", s.handleUnlock)

	s.router.Group(func(r chi.Router) {
		r.Use(RequireToken(s.auth))

		r.Post("/api/v1/lock", s.handleLock)
		r.Get("/api/v1/profile", s.handleGetProfile)
		r.Put("/api/v1/profile", s.handlePutProfile)
		r.Post("/api/v1/onboarding", s.handleOnboarding)

		r.Get("/api/v1/today", s.handleToday)
		r.Get("/api/v1/week", s.handleWeek)
		r.Get("/api/v1/history", s.handleHistory)
		r.Get("/api/v1/history/sets", s.handleSetLogs)
		r.Get("/api/v1/stats", s.handleStats)
		r.Post("/api/v1/media/broken", s.handleMediaBroken)
		r.Post("/api/v1/import/alpha", s.handleAlphaImport)

		r.Route("/api/v1/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Get("/active", s.handleActiveSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleAbandonSession)
			r.Post("/{id}/sets", s.handleLogSet)
			r.Post("/{id}/rest/dismiss", s.handleDismissRest)
			r.Post("/{id}/advance", s.handleAdvance)
			r.Get("/{id}/events", s.handleSessionEvents)
		})

		r.Handle("/mcp", http.HandlerFunc(s.serveMCP))
		r.Handle("/mcp/*", http.HandlerFunc(s.serveMCP))
	})
}

func (s *Server) serveMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mcp not enabled"})
		return
	}
	s.mcp.ServeHTTP(w, r)
}
