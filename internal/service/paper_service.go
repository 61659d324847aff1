package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"paper-reader/internal/domain"
	apperrors "paper-reader/pkg/errors"

	"golang.org/x/sync/singleflight"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// PaperService serves PDF files and their extracted text.
type PaperService struct {
	files     domain.FileService
	extractor domain.PDFExtractor
	papers    domain.PaperRepository
	logger    domain.Logger

	cache *textCache
	group singleflight.Group
}

func NewPaperService(
	files domain.FileService,
	extractor domain.PDFExtractor,
	papers domain.PaperRepository,
	cacheSize int,
	logger domain.Logger,
) *PaperService {
	return &PaperService{
		files:     files,
		extractor: extractor,
		papers:    papers,
		logger:    logger,
		cache:     newTextCache(cacheSize),
	}
}

// Open returns the PDF for streaming to the client.
func (s *PaperService) Open(path string) (*domain.OpenFile, error) {
	resolved, err := s.files.ResolvePDF(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, apperrors.NewNotFoundError("PDF not found").WithCause(domain.ErrPaperNotFound)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, apperrors.NewInternalError("Failed to read PDF", err)
	}

	return &domain.OpenFile{Name: info.Name(), ModTime: info.ModTime(), Content: f}, nil
}

// Text extracts page text. page is 0-indexed; nil means every page.
func (s *PaperService) Text(ctx context.Context, path string, page *int) (*domain.PaperText, error) {
	resolved, err := s.files.ResolvePDF(path)
	if err != nil {
		return nil, err
	}

	pages, err := s.extractor.ExtractPages(resolved, page)
	if err != nil {
		s.logger.Error("Failed to extract PDF text", err, "path", resolved)
		return nil, apperrors.NewProcessingError("Failed to read PDF", err)
	}
	return &domain.PaperText{Pages: pages}, nil
}

// Metadata reads document info and records the paper as recently opened.
func (s *PaperService) Metadata(ctx context.Context, path string) (*domain.PaperMetadata, error) {
	resolved, err := s.files.ResolvePDF(path)
	if err != nil {
		return nil, err
	}

	meta, err := s.extractor.Metadata(resolved)
	if err != nil {
		s.logger.Error("Failed to read PDF metadata", err, "path", resolved)
		return nil, apperrors.NewProcessingError("Failed to read PDF", err)
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(resolved), filepath.Ext(resolved))
	}
	if err := s.papers.Upsert(ctx, &domain.Paper{FilePath: resolved, Title: title, PageCount: meta.PageCount}); err != nil {
		s.logger.Warn("Failed to record recent paper", "path", resolved, "error", err)
	}

	return meta, nil
}

// FullText returns all page text joined by blank lines. Results are cached
// until the file changes.
func (s *PaperService) FullText(ctx context.Context, path string) (string, error) {
	resolved, err := s.files.ResolvePDF(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", apperrors.NewNotFoundError("PDF not found").WithCause(domain.ErrPaperNotFound)
	}

	key := fmt.Sprintf("%s|%d|%d", resolved, info.ModTime().UnixNano(), info.Size())
	if text, ok := s.cache.Get(key); ok {
		return text, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		pages, err := s.extractor.ExtractPages(resolved, nil)
		if err != nil {
			return "", err
		}
		texts := make([]string, len(pages))
		for i, p := range pages {
			texts[i] = p.Text
		}
		text := strings.Join(texts, "\n\n")
		s.cache.Put(key, text)
		s.logger.Debug("Paper text cached", "path", resolved, "pages", len(pages), "chars", len(text))
		return text, nil
	})
	if err != nil {
		s.logger.Error("Failed to extract PDF text", err, "path", resolved)
		return "", apperrors.NewProcessingError("Failed to read PDF", err)
	}
	return v.(string), nil
}

// Recent lists recently opened papers, newest first.
func (s *PaperService) Recent(ctx context.Context, limit int) ([]*domain.Paper, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	papers, err := s.papers.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list recent papers", err)
	}
	return papers, nil
}

var _ domain.PaperService = (*PaperService)(nil)
