package service

import (
	"context"
	"errors"

	"paper-reader/internal/domain"
	apperrors "paper-reader/pkg/errors"
)

type HighlightService struct {
	repo   domain.HighlightRepository
	logger domain.Logger
}

func NewHighlightService(repo domain.HighlightRepository, logger domain.Logger) *HighlightService {
	return &HighlightService{
		repo:   repo,
		logger: logger,
	}
}

func (s *HighlightService) CreateHighlight(ctx context.Context, highlight *domain.Highlight) (*domain.Highlight, error) {
	if highlight == nil {
		return nil, apperrors.NewValidationError("highlight is required")
	}
	if err := highlight.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if highlight.Color == "" {
		highlight.Color = domain.DefaultHighlightColor
	}

	if err := s.repo.Create(ctx, highlight); err != nil {
		s.logger.Error("Failed to create highlight", err, "paper_path", highlight.PaperPath)
		return nil, apperrors.NewInternalError("Failed to create highlight", err)
	}
	s.logger.Info("Highlight created", "paper_path", highlight.PaperPath, "highlight_id", highlight.ID)
	return highlight, nil
}

func (s *HighlightService) ListHighlights(ctx context.Context, paperPath string) ([]*domain.Highlight, error) {
	if paperPath == "" {
		return nil, apperrors.NewValidationError("paper_path is required")
	}
	highlights, err := s.repo.ListByPaper(ctx, paperPath)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve highlights", err)
	}
	return highlights, nil
}

// UpdateHighlight changes color and comment; fields left nil are kept.
func (s *HighlightService) UpdateHighlight(ctx context.Context, id string, update domain.HighlightUpdate) (*domain.Highlight, error) {
	highlight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "Failed to update highlight")
	}

	if update.Color != nil {
		highlight.Color = *update.Color
	}
	if update.Comment != nil {
		highlight.Comment = *update.Comment
	}

	if err := s.repo.Update(ctx, highlight); err != nil {
		return nil, s.mapError(err, "Failed to update highlight")
	}
	return highlight, nil
}

func (s *HighlightService) DeleteHighlight(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("highlight_id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, "Failed to delete highlight")
	}
	s.logger.Info("Highlight deleted", "highlight_id", id)
	return nil
}

func (s *HighlightService) mapError(err error, message string) error {
	if errors.Is(err, domain.ErrHighlightNotFound) {
		return apperrors.NewNotFoundError("Highlight not found").WithCause(err)
	}
	s.logger.Error(message, err)
	return apperrors.NewInternalError(message, err)
}

var _ domain.HighlightService = (*HighlightService)(nil)
