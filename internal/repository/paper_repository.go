package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"paper-reader/internal/domain"

	"github.com/google/uuid"
)

// PaperRepository records recently opened papers in SQLite.
type PaperRepository struct {
	db     *sql.DB
	logger domain.Logger
}

func NewPaperRepository(db *sql.DB, logger domain.Logger) *PaperRepository {
	return &PaperRepository{db: db, logger: logger}
}

// Upsert inserts the paper or refreshes title, page count and last_opened
// for an existing file path.
func (r *PaperRepository) Upsert(ctx context.Context, paper *domain.Paper) error {
	if paper.ID == "" {
		paper.ID = uuid.NewString()
	}
	if paper.LastOpened.IsZero() {
		paper.LastOpened = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO papers (id, file_path, title, page_count, last_opened)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			title = excluded.title,
			page_count = excluded.page_count,
			last_opened = excluded.last_opened`,
		paper.ID, paper.FilePath, sanitizeText(paper.Title), paper.PageCount, formatTime(paper.LastOpened))
	if err != nil {
		return fmt.Errorf("failed to upsert paper: %w", err)
	}
	return nil
}

func (r *PaperRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Paper, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, file_path, title, page_count, last_opened FROM papers ORDER BY last_opened DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Paper, 0)
	for rows.Next() {
		var (
			p          domain.Paper
			lastOpened string
		)
		if err := rows.Scan(&p.ID, &p.FilePath, &p.Title, &p.PageCount, &lastOpened); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		p.LastOpened = parseTime(lastOpened)
		out = append(out, &p)
	}
	return out, rows.Err()
}

var _ domain.PaperRepository = (*PaperRepository)(nil)
