package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"paper-reader/internal/domain"

	"github.com/google/uuid"
)

// ChatRepository stores chat history per paper in SQLite.
type ChatRepository struct {
	db     *sql.DB
	logger domain.Logger
}

func NewChatRepository(db *sql.DB, logger domain.Logger) *ChatRepository {
	return &ChatRepository{db: db, logger: logger}
}

// Append writes messages in a single transaction.
func (r *ChatRepository) Append(ctx context.Context, messages ...*domain.StoredChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, m := range messages {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			// Keep insertion order stable when timestamps collide.
			m.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		}
		m.Content = sanitizeText(m.Content)

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_messages (id, paper_path, role, content, model, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.PaperPath, m.Role, m.Content, m.Model, formatTime(m.CreatedAt)); err != nil {
			return fmt.Errorf("failed to insert chat message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat messages: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListByPaper(ctx context.Context, paperPath string) ([]*domain.StoredChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, paper_path, role, content, model, created_at FROM chat_messages
		 WHERE paper_path = ? ORDER BY created_at, rowid`, paperPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.StoredChatMessage, 0)
	for rows.Next() {
		var (
			m         domain.StoredChatMessage
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.PaperPath, &m.Role, &m.Content, &m.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *ChatRepository) DeleteByPaper(ctx context.Context, paperPath string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE paper_path = ?`, paperPath)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chat messages: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

var _ domain.ChatRepository = (*ChatRepository)(nil)
