package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/reprx/internal/models"
)

// SaveProfile stores the onboarding profile, replacing any previous one.
func (db *DB) SaveProfile(ctx context.Context, p models.Profile) error {
	injuries, err := json.Marshal(p.Injuries)
	if err != nil {
		return fmt.Errorf("encoding injuries: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO profile (id, goal, days_per_week, gym_type, injuries, experience_note, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, now())
		 ON CONFLICT (id) DO UPDATE SET
		 goal = EXCLUDED.goal, days_per_week = EXCLUDED.days_per_week, gym_type = EXCLUDED.gym_type,
		 injuries = EXCLUDED.injuries, experience_note = EXCLUDED.experience_note, updated_at = now()`,
		p.Goal, p.DaysPerWeek, p.GymType, injuries, p.ExperienceNote)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored profile or ErrNotFound before onboarding.
func (db *DB) GetProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	var injuries []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT goal, days_per_week, gym_type, injuries, experience_note, updated_at
		 FROM profile WHERE id = 1`,
	).Scan(&p.Goal, &p.DaysPerWeek, &p.GymType, &injuries, &p.ExperienceNote, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	if err := json.Unmarshal(injuries, &p.Injuries); err != nil {
		return nil, fmt.Errorf("decoding injuries: %w", err)
	}
	return &p, nil
}
