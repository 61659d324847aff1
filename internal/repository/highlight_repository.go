package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"paper-reader/internal/domain"

	"github.com/google/uuid"
)

// HighlightRepository implements the domain.HighlightRepository interface on SQLite.
type HighlightRepository struct {
	db     *sql.DB
	logger domain.Logger
}

func NewHighlightRepository(db *sql.DB, logger domain.Logger) *HighlightRepository {
	return &HighlightRepository{
		db:     db,
		logger: logger,
	}
}

const highlightColumns = `id, paper_path, content_text, position_json, color, comment, created_at`

func (r *HighlightRepository) Create(ctx context.Context, highlight *domain.Highlight) error {
	if highlight.ID == "" {
		highlight.ID = uuid.NewString()
	}
	if highlight.CreatedAt.IsZero() {
		highlight.CreatedAt = time.Now().UTC()
	}
	highlight.ContentText = sanitizeText(highlight.ContentText)
	highlight.Comment = sanitizeText(highlight.Comment)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO highlights (`+highlightColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		highlight.ID,
		highlight.PaperPath,
		highlight.ContentText,
		highlight.PositionJSON,
		highlight.Color,
		highlight.Comment,
		formatTime(highlight.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create highlight: %w", err)
	}
	return nil
}

func (r *HighlightRepository) GetByID(ctx context.Context, id string) (*domain.Highlight, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+highlightColumns+` FROM highlights WHERE id = ?`, id)
	h, err := scanHighlight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrHighlightNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get highlight: %w", err)
	}
	return h, nil
}

func (r *HighlightRepository) ListByPaper(ctx context.Context, paperPath string) ([]*domain.Highlight, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+highlightColumns+` FROM highlights WHERE paper_path = ? ORDER BY created_at, rowid`,
		paperPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Highlight, 0)
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *HighlightRepository) Update(ctx context.Context, highlight *domain.Highlight) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE highlights SET color = ?, comment = ? WHERE id = ?`,
		highlight.Color, sanitizeText(highlight.Comment), highlight.ID)
	if err != nil {
		return fmt.Errorf("failed to update highlight: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrHighlightNotFound
	}
	return nil
}

func (r *HighlightRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM highlights WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete highlight: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrHighlightNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHighlight(s rowScanner) (*domain.Highlight, error) {
	var (
		h         domain.Highlight
		createdAt string
	)
	if err := s.Scan(&h.ID, &h.PaperPath, &h.ContentText, &h.PositionJSON, &h.Color, &h.Comment, &createdAt); err != nil {
		return nil, err
	}
	h.CreatedAt = parseTime(createdAt)
	return &h, nil
}

// sanitizeText removes NUL bytes that PDF extraction sometimes leaves in selections.
func sanitizeText(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

var _ domain.HighlightRepository = (*HighlightRepository)(nil)
