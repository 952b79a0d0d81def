package storage

import (
	"context"
	"fmt"

	"github.com/claude/reprx/internal/models"
)

// GetExercise returns the cached media row for a slug, or ErrNotFound.
func (db *DB) GetExercise(ctx context.Context, slug string) (*models.ExerciseRow, error) {
	var e models.ExerciseRow
	err := db.Pool.QueryRow(ctx,
		`SELECT slug, name, gif_url, primary_muscle, secondary_muscles, updated_at
		 FROM exercises WHERE slug = $1`, slug,
	).Scan(&e.Slug, &e.Name, &e.GifURL, &e.PrimaryMuscle, &e.SecondaryMuscles, &e.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "exercise")
	}
	return &e, nil
}

// UpsertExercise inserts or replaces a media cache row.
func (db *DB) UpsertExercise(ctx context.Context, e models.ExerciseRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (slug, name, gif_url, primary_muscle, secondary_muscles, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (slug) DO UPDATE SET
		 name = EXCLUDED.name, gif_url = EXCLUDED.gif_url, primary_muscle = EXCLUDED.primary_muscle,
		 secondary_muscles = EXCLUDED.secondary_muscles, updated_at = now()`,
		e.Slug, e.Name, e.GifURL, e.PrimaryMuscle, e.SecondaryMuscles)
	if err != nil {
		return fmt.Errorf("upserting exercise %s: %w", e.Slug, err)
	}
	return nil
}

// BackfillExerciseMuscles fills muscle columns that are still empty. Known
// values are never overwritten.
func (db *DB) BackfillExerciseMuscles(ctx context.Context, slug string, primary *string, secondary []string) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE exercises SET
		 primary_muscle = COALESCE(primary_muscle, $2),
		 secondary_muscles = CASE WHEN cardinality(secondary_muscles) > 0
		   THEN secondary_muscles ELSE $3 END,
		 updated_at = now()
		 WHERE slug = $1`,
		slug, primary, secondary)
	if err != nil {
		return fmt.Errorf("backfilling muscles for %s: %w", slug, err)
	}
	return nil
}
