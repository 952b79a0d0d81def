package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/workout"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveProgram stores a generated program as the active program, with one
// template per training day. The previous active program is deactivated in
// the same transaction.
func (db *DB) SaveProgram(ctx context.Context, gp models.GeneratedProgram) (*models.Program, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE programs SET is_active = false WHERE is_active`); err != nil {
		return nil, fmt.Errorf("deactivating programs: %w", err)
	}

	prog := &models.Program{
		ID:        uuid.New(),
		Name:      gp.Name,
		WeekCount: gp.WeekCount,
		IsActive:  true,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO programs (id, name, week_count, is_active) VALUES ($1, $2, $3, true)
		 RETURNING created_at`,
		prog.ID, prog.Name, prog.WeekCount,
	).Scan(&prog.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting program: %w", err)
	}

	batch := &pgx.Batch{}
	for _, day := range gp.Split {
		templateID := uuid.New()
		batch.Queue(
			`INSERT INTO workout_templates (id, program_id, day_of_week, label) VALUES ($1, $2, $3, $4)`,
			templateID, prog.ID, day.DayOfWeek, day.Label)
		for i, ex := range day.Exercises {
			batch.Queue(
				`INSERT INTO template_exercises (template_id, position, exercise_slug, exercise_name,
				 sets, reps_min, reps_max, starting_weight_kg, rest_seconds, injury_note)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				templateID, i, models.Slug(ex.Name), ex.Name,
				ex.Sets, ex.RepsMin, ex.RepsMax, ex.StartingWeightKg, ex.RestSeconds, ex.InjuryNote)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("inserting templates: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing program: %w", err)
	}
	return prog, nil
}

// GetActiveProgram returns the active program header.
func (db *DB) GetActiveProgram(ctx context.Context) (*models.Program, error) {
	var p models.Program
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, week_count, is_active, created_at FROM programs WHERE is_active`,
	).Scan(&p.ID, &p.Name, &p.WeekCount, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "active program")
	}
	return &p, nil
}

// GetTemplatesForWeek returns every template of the active program ordered by
// day of week, each with its exercises.
func (db *DB) GetTemplatesForWeek(ctx context.Context) ([]models.Template, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT t.id, t.program_id, t.day_of_week, t.label
		 FROM workout_templates t
		 JOIN programs p ON p.id = t.program_id AND p.is_active
		 ORDER BY t.day_of_week`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.ProgramID, &t.DayOfWeek, &t.Label); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		exercises, err := db.templateExercises(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Exercises = exercises
	}
	return result, nil
}

// GetTemplateForDay returns the active program's template for a weekday, or
// ErrNotFound on a rest day.
func (db *DB) GetTemplateForDay(ctx context.Context, day time.Weekday) (*models.Template, error) {
	var t models.Template
	err := db.Pool.QueryRow(ctx,
		`SELECT t.id, t.program_id, t.day_of_week, t.label
		 FROM workout_templates t
		 JOIN programs p ON p.id = t.program_id AND p.is_active
		 WHERE t.day_of_week = $1`,
		DayOfWeek(day),
	).Scan(&t.ID, &t.ProgramID, &t.DayOfWeek, &t.Label)
	if err != nil {
		return nil, notFound(err, "template for day")
	}
	t.Exercises, err = db.templateExercises(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTemplate returns one template with its exercises.
func (db *DB) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var t models.Template
	err := db.Pool.QueryRow(ctx,
		`SELECT id, program_id, day_of_week, label FROM workout_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.ProgramID, &t.DayOfWeek, &t.Label)
	if err != nil {
		return nil, notFound(err, "template")
	}
	t.Exercises, err = db.templateExercises(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadPlan builds the runtime plan for a template. Exercise IDs are slugs.
func (db *DB) LoadPlan(ctx context.Context, templateID uuid.UUID) (workout.Plan, error) {
	t, err := db.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(t.Exercises) == 0 {
		return nil, fmt.Errorf("template %s has no exercises: %w", templateID, ErrNotFound)
	}
	return TemplatePlan(t), nil
}

// TemplatePlan converts a stored template into a runtime plan.
func TemplatePlan(t *models.Template) workout.Plan {
	plan := make(workout.Plan, 0, len(t.Exercises))
	for _, ex := range t.Exercises {
		plan = append(plan, workout.PlannedExercise{
			ExerciseID:       ex.Slug,
			Name:             ex.Name,
			TargetSets:       ex.Sets,
			TargetRepsMin:    ex.RepsMin,
			TargetRepsMax:    ex.RepsMax,
			TargetWeightKg:   ex.StartingWeightKg,
			RestSeconds:      ex.RestSeconds,
			PrimaryMuscle:    deref(ex.PrimaryMuscle),
			SecondaryMuscles: ex.SecondaryMuscles,
			GifURL:           deref(ex.GifURL),
		})
	}
	return plan
}

func (db *DB) templateExercises(ctx context.Context, templateID uuid.UUID) ([]models.TemplateExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT te.position, te.exercise_slug, te.exercise_name, te.sets, te.reps_min, te.reps_max,
		 te.starting_weight_kg, te.rest_seconds, te.injury_note,
		 e.gif_url, e.primary_muscle, e.secondary_muscles
		 FROM template_exercises te
		 LEFT JOIN exercises e ON e.slug = te.exercise_slug
		 WHERE te.template_id = $1
		 ORDER BY te.position`,
		templateID)
	if err != nil {
		return nil, fmt.Errorf("querying template exercises: %w", err)
	}
	defer rows.Close()

	var result []models.TemplateExercise
	for rows.Next() {
		var ex models.TemplateExercise
		if err := rows.Scan(&ex.Position, &ex.Slug, &ex.Name, &ex.Sets, &ex.RepsMin, &ex.RepsMax,
			&ex.StartingWeightKg, &ex.RestSeconds, &ex.InjuryNote,
			&ex.GifURL, &ex.PrimaryMuscle, &ex.SecondaryMuscles); err != nil {
			return nil, fmt.Errorf("scanning template exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

// DayOfWeek converts a time.Weekday to the stored 1 (Monday) .. 7 (Sunday).
func DayOfWeek(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
