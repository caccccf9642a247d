package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"healthconnect-api/internal/models"
)

const (
	mealTable    = "meal_entries"
	workoutTable = "workout_entries"
)

// upsertEntry replaces the user's entry with the same id or appends a new one. Ids are
// scoped per user, so the same client id can exist in several diaries.
func (s *Store) upsertEntry(ctx context.Context, table, userID, id, date string, createdAt time.Time, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, id, date, data, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, id) DO UPDATE SET date = excluded.date, data = excluded.data`,
		userID, id, date, string(data), millis(createdAt))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// createdAt keeps the original creation time when an existing entry is replaced.
func (s *Store) createdAt(ctx context.Context, table, userID, id string) time.Time {
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT created_at FROM `+table+` WHERE user_id = ? AND id = ?`, userID, id).Scan(&ms)
	if err != nil {
		return time.Now().UTC()
	}
	return fromMillis(ms)
}

func listEntries[T any](ctx context.Context, s *Store, table, userID, clause string, args ...any) ([]T, error) {
	query := `SELECT data FROM ` + table + ` WHERE user_id = ?`
	if clause != "" {
		query += ` AND ` + clause
	}
	query += ` ORDER BY date, created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", table, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) deleteEntry(ctx context.Context, table, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func dayClause(date string) (string, []any, error) {
	if date == "" {
		return "", nil, nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return `date = ?`, []any{date}, nil
}

func monthClause(year, month int) (string, []any, error) {
	if year < 1900 || year > 9999 || month < 1 || month > 12 {
		return "", nil, fmt.Errorf("%w: %04d-%02d", ErrInvalidDate, year, month)
	}
	return `date LIKE ?`, []any{fmt.Sprintf("%04d-%02d-%%", year, month)}, nil
}

func (s *Store) SaveMeal(ctx context.Context, userID string, m models.MealEntry) (models.MealEntry, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = s.createdAt(ctx, mealTable, userID, m.ID)
	if err := s.upsertEntry(ctx, mealTable, userID, m.ID, m.Date, m.CreatedAt, m); err != nil {
		return models.MealEntry{}, err
	}
	return m, nil
}

// ListMeals returns the user's meals for one day, or all meals when date is empty.
func (s *Store) ListMeals(ctx context.Context, userID, date string) ([]models.MealEntry, error) {
	clause, args, err := dayClause(date)
	if err != nil {
		return nil, err
	}
	return listEntries[models.MealEntry](ctx, s, mealTable, userID, clause, args...)
}

func (s *Store) ListMealsByMonth(ctx context.Context, userID string, year, month int) ([]models.MealEntry, error) {
	clause, args, err := monthClause(year, month)
	if err != nil {
		return nil, err
	}
	return listEntries[models.MealEntry](ctx, s, mealTable, userID, clause, args...)
}

func (s *Store) DeleteMeal(ctx context.Context, userID, id string) error {
	return s.deleteEntry(ctx, mealTable, userID, id)
}

func (s *Store) SaveWorkout(ctx context.Context, userID string, w models.WorkoutEntry) (models.WorkoutEntry, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	w.CreatedAt = s.createdAt(ctx, workoutTable, userID, w.ID)
	if err := s.upsertEntry(ctx, workoutTable, userID, w.ID, w.Date, w.CreatedAt, w); err != nil {
		return models.WorkoutEntry{}, err
	}
	return w, nil
}

func (s *Store) ListWorkouts(ctx context.Context, userID, date string) ([]models.WorkoutEntry, error) {
	clause, args, err := dayClause(date)
	if err != nil {
		return nil, err
	}
	return listEntries[models.WorkoutEntry](ctx, s, workoutTable, userID, clause, args...)
}

func (s *Store) ListWorkoutsByMonth(ctx context.Context, userID string, year, month int) ([]models.WorkoutEntry, error) {
	clause, args, err := monthClause(year, month)
	if err != nil {
		return nil, err
	}
	return listEntries[models.WorkoutEntry](ctx, s, workoutTable, userID, clause, args...)
}

func (s *Store) DeleteWorkout(ctx context.Context, userID, id string) error {
	return s.deleteEntry(ctx, workoutTable, userID, id)
}
