package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"healthconnect-api/internal/models"
)

func (s *Store) AppendChat(ctx context.Context, userID string, msgs ...models.ChatMessage) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range msgs {
			if m.CreatedAt.IsZero() {
				m.CreatedAt = time.Now().UTC()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO chat_messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
				userID, m.Role, m.Content, millis(m.CreatedAt))
			if err != nil {
				return fmt.Errorf("insert chat message: %w", err)
			}
		}
		return nil
	})
}

// ChatHistory returns the last limit messages in chronological order.
func (s *Store) ChatHistory(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM (
		     SELECT id, role, content, created_at FROM chat_messages
		     WHERE user_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select chat history: %w", err)
	}
	defer rows.Close()

	out := []models.ChatMessage{}
	for rows.Next() {
		var (
			m  models.ChatMessage
			ms int64
		)
		if err := rows.Scan(&m.Role, &m.Content, &ms); err != nil {
			return nil, err
		}
		m.CreatedAt = fromMillis(ms)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ClearChat(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear chat: %w", err)
	}
	return nil
}

// PurgeChatBefore drops chat messages older than cutoff for every user.
func (s *Store) PurgeChatBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE created_at < ?`, millis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge chat: %w", err)
	}
	return res.RowsAffected()
}
