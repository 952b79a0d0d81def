package exercisedb

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/claude/reprx/internal/metrics"
	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/storage"
	"github.com/coocood/freecache"
)

const cacheExpireSeconds = 6 * 60 * 60

// Store is the persistent media cache.
type Store interface {
	GetExercise(ctx context.Context, slug string) (*models.ExerciseRow, error)
	UpsertExercise(ctx context.Context, e models.ExerciseRow) error
	BackfillExerciseMuscles(ctx context.Context, slug string, primary *string, secondary []string) error
}

// Fetcher is the remote side of a lookup.
type Fetcher interface {
	FetchExerciseDB(ctx context.Context, name string) (Remote, error)
	FetchWgerImage(ctx context.Context, name string) (string, error)
}

// Exercise is a resolved media record. Nil fields are unknown.
type Exercise struct {
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	GifURL           *string  `json:"gif_url"`
	PrimaryMuscle    *string  `json:"primary_muscle"`
	SecondaryMuscles []string `json:"secondary_muscles"`
}

// Service resolves exercise media through the in-process cache, the
// exercises table and finally the remote APIs.
type Service struct {
	store   Store
	remote  Fetcher
	cache   *freecache.Cache
	metrics *metrics.Manager
	log     *slog.Logger
}

// NewService creates a Service with a cacheMB megabyte hot cache.
func NewService(store Store, remote Fetcher, cacheMB int, m *metrics.Manager, log *slog.Logger) *Service {
	megabyte := 1024 * 1024
	return &Service{
		store:   store,
		remote:  remote,
		cache:   freecache.NewCache(cacheMB * megabyte),
		metrics: m,
		log:     log,
	}
}

// Lookup returns media for an exercise name. hintPrimary and hintSecondary
// come from the program generator and fill gaps the APIs leave. Lookup never
// fails: anything it cannot find stays nil.
func (s *Service) Lookup(ctx context.Context, name string, hintPrimary *string, hintSecondary []string) Exercise {
	slug := models.Slug(name)
	key := []byte(slug)

	if data, err := s.cache.Get(key); err == nil {
		var ex Exercise
		if err := json.Unmarshal(data, &ex); err == nil && !needsBackfill(ex.PrimaryMuscle, ex.SecondaryMuscles, hintPrimary, hintSecondary) {
			s.metrics.CounterExerciseCacheHits.WithLabelValues(metrics.SourceCache).Inc()
			return ex
		}
	}

	row, err := s.store.GetExercise(ctx, slug)
	switch {
	case err == nil:
		s.metrics.CounterExerciseCacheHits.WithLabelValues(metrics.SourceStore).Inc()
		ex := fromRow(*row)
		if needsBackfill(ex.PrimaryMuscle, ex.SecondaryMuscles, hintPrimary, hintSecondary) {
			if err := s.store.BackfillExerciseMuscles(ctx, slug, hintPrimary, hintSecondary); err != nil {
				s.metrics.CounterExternalFailures.WithLabelValues(metrics.ServiceStore).Inc()
				s.log.Warn("exercise backfill failed", "slug", slug, "error", err)
			}
			if ex.PrimaryMuscle == nil {
				ex.PrimaryMuscle = hintPrimary
			}
			if len(ex.SecondaryMuscles) == 0 {
				ex.SecondaryMuscles = hintSecondary
			}
		}
		s.remember(ex)
		return ex
	case !errors.Is(err, storage.ErrNotFound):
		s.metrics.CounterExternalFailures.WithLabelValues(metrics.ServiceStore).Inc()
		s.log.Warn("exercise cache read failed", "slug", slug, "error", err)
	}

	s.metrics.CounterExerciseCacheHits.WithLabelValues(metrics.SourceRemote).Inc()
	remote, err := s.remote.FetchExerciseDB(ctx, name)
	if err != nil {
		s.metrics.CounterExternalFailures.WithLabelValues(metrics.ServiceExerciseDB).Inc()
		s.log.Warn("exercise lookup failed", "name", name, "error", err)
	}
	if remote.GifURL == "" {
		img, err := s.remote.FetchWgerImage(ctx, name)
		if err != nil {
			s.metrics.CounterExternalFailures.WithLabelValues(metrics.ServiceWger).Inc()
			s.log.Warn("wger image lookup failed", "name", name, "error", err)
		}
		remote.GifURL = img
	}

	ex := Exercise{
		Slug:             slug,
		Name:             name,
		GifURL:           nonEmpty(remote.GifURL),
		PrimaryMuscle:    nonEmpty(remote.PrimaryMuscle),
		SecondaryMuscles: remote.SecondaryMuscles,
	}
	if ex.PrimaryMuscle == nil {
		ex.PrimaryMuscle = hintPrimary
	}
	if len(ex.SecondaryMuscles) == 0 {
		ex.SecondaryMuscles = hintSecondary
	}

	if err := s.store.UpsertExercise(ctx, models.ExerciseRow{
		Slug:             ex.Slug,
		Name:             ex.Name,
		GifURL:           ex.GifURL,
		PrimaryMuscle:    ex.PrimaryMuscle,
		SecondaryMuscles: ex.SecondaryMuscles,
	}); err != nil {
		s.metrics.CounterExternalFailures.WithLabelValues(metrics.ServiceStore).Inc()
		s.log.Warn("exercise cache write failed", "name", name, "error", err)
	}
	s.remember(ex)
	return ex
}

func (s *Service) remember(ex Exercise) {
	data, err := json.Marshal(ex)
	if err != nil {
		return
	}
	if err := s.cache.Set([]byte(ex.Slug), data, cacheExpireSeconds); err != nil {
		s.log.Debug("exercise hot cache set failed", "slug", ex.Slug, "error", err)
	}
}

func needsBackfill(primary *string, secondary []string, hintPrimary *string, hintSecondary []string) bool {
	return (primary == nil && hintPrimary != nil) || (len(secondary) == 0 && len(hintSecondary) > 0)
}

func fromRow(r models.ExerciseRow) Exercise {
	return Exercise{
		Slug:             r.Slug,
		Name:             r.Name,
		GifURL:           r.GifURL,
		PrimaryMuscle:    r.PrimaryMuscle,
		SecondaryMuscles: r.SecondaryMuscles,
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
