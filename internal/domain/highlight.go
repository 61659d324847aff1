package domain

import (
	"context"
	"time"
)

// DefaultHighlightColor is applied when a highlight is created without a color.
const DefaultHighlightColor = "#FFFF00"

// Highlight represents a user's saved excerpt from a paper.
type Highlight struct {
	ID           string    `json:"id"`
	PaperPath    string    `json:"paper_path"`
	ContentText  string    `json:"content_text"`
	PositionJSON string    `json:"position_json"`
	Color        string    `json:"color"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the fields required to persist a highlight.
func (h *Highlight) Validate() error {
	if h.PaperPath == "" {
		return &ValidationError{Field: "paper_path", Message: "paper path is required"}
	}
	if h.PositionJSON == "" {
		return &ValidationError{Field: "position_json", Message: "position is required"}
	}
	return nil
}

// HighlightUpdate carries the mutable fields of a highlight. Nil means unchanged.
type HighlightUpdate struct {
	Color   *string `json:"color,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// HighlightRepository defines persistence operations for highlights.
type HighlightRepository interface {
	Create(ctx context.Context, highlight *Highlight) error
	GetByID(ctx context.Context, id string) (*Highlight, error)
	ListByPaper(ctx context.Context, paperPath string) ([]*Highlight, error)
	Update(ctx context.Context, highlight *Highlight) error
	Delete(ctx context.Context, id string) error
}

// HighlightService defines the use-case operations for highlights.
type HighlightService interface {
	CreateHighlight(ctx context.Context, highlight *Highlight) (*Highlight, error)
	ListHighlights(ctx context.Context, paperPath string) ([]*Highlight, error)
	UpdateHighlight(ctx context.Context, id string, update HighlightUpdate) (*Highlight, error)
	DeleteHighlight(ctx context.Context, id string) error
}
