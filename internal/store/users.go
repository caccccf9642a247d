package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthconnect-api/internal/models"
)

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const userColumns = `id, email, name, password_hash, tier, ai_api_key, ai_model, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                models.User
		tier             string
		created, updated int64
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &tier, &u.AI.APIKey, &u.AI.Model, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Tier = models.Tier(tier)
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return &u, nil
}

// CreateUser inserts a new user. A previous deletion mark for the same email is cleared.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, u.Email).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists > 0 {
			return ErrDuplicate
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Email, u.Name, u.PasswordHash, string(u.Tier), u.AI.APIKey, u.AI.Model,
			millis(u.CreatedAt), millis(u.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM deleted_accounts WHERE email = ?`, u.Email); err != nil {
			return fmt.Errorf("clear deletion mark: %w", err)
		}
		return nil
	})
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email))
	return scanUser(row)
}

func (s *Store) UpdateTier(ctx context.Context, id string, tier models.Tier) error {
	return s.updateUser(ctx, id, `tier = ?`, string(tier))
}

func (s *Store) UpdateAISettings(ctx context.Context, id string, settings models.AISettings) error {
	return s.updateUser(ctx, id, `ai_api_key = ?, ai_model = ?`, settings.APIKey, settings.Model)
}

func (s *Store) updateUser(ctx context.Context, id, set string, args ...any) error {
	args = append(args, millis(time.Now()), id)
	res, err := s.db.ExecContext(ctx, `UPDATE users SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user and every record they own, and remembers the email as deleted.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var email string
		err := tx.QueryRowContext(ctx, `SELECT email FROM users WHERE id = ?`, id).Scan(&email)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}

		for _, table := range []string{"health_profiles", "bmr_data", "meal_entries", "workout_entries", "chat_messages"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ?`, id); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO deleted_accounts (email, deleted_at) VALUES (?, ?)
			 ON CONFLICT(email) DO UPDATE SET deleted_at = excluded.deleted_at`,
			email, millis(time.Now()))
		if err != nil {
			return fmt.Errorf("mark deleted: %w", err)
		}
		return nil
	})
}

func (s *Store) IsDeleted(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM deleted_accounts WHERE email = ?`, normalizeEmail(email)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check deleted account: %w", err)
	}
	return n > 0, nil
}
