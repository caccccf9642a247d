package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthconnect-api/internal/models"
)

func (s *Store) getDocument(ctx context.Context, table, userID string, out any) error {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM `+table+` WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("decode %s: %w", table, err)
	}
	return nil
}

func (s *Store) putDocument(ctx context.Context, table, userID string, v any, at time.Time) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", table, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, string(data), millis(at))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// GetProfile returns the stored health profile, or an all-null profile when none was saved.
func (s *Store) GetProfile(ctx context.Context, userID string) (models.HealthData, error) {
	var d models.HealthData
	err := s.getDocument(ctx, "health_profiles", userID, &d)
	if errors.Is(err, ErrNotFound) {
		return models.HealthData{}, nil
	}
	return d, err
}

func (s *Store) SaveProfile(ctx context.Context, userID string, d models.HealthData) (models.HealthData, error) {
	d.UpdatedAt = time.Now().UTC()
	if err := s.putDocument(ctx, "health_profiles", userID, d, d.UpdatedAt); err != nil {
		return models.HealthData{}, err
	}
	return d, nil
}

func (s *Store) ResetProfile(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM health_profiles WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("reset profile: %w", err)
	}
	return nil
}

func (s *Store) GetBMR(ctx context.Context, userID string) (models.BMRData, error) {
	var d models.BMRData
	err := s.getDocument(ctx, "bmr_data", userID, &d)
	return d, err
}

func (s *Store) SaveBMR(ctx context.Context, userID string, d models.BMRData) (models.BMRData, error) {
	d.UpdatedAt = time.Now().UTC()
	if err := s.putDocument(ctx, "bmr_data", userID, d, d.UpdatedAt); err != nil {
		return models.BMRData{}, err
	}
	return d, nil
}
