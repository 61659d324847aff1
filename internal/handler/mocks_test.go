package handler

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"paper-reader/internal/domain"
	apperrors "paper-reader/pkg/errors"
)

// Mock implementations for handler testing

type MockFileService struct {
	roots   []domain.RootEntry
	entries map[string][]domain.FileEntry
}

func (m *MockFileService) Roots() []domain.RootEntry { return m.roots }

func (m *MockFileService) Browse(dirPath string) ([]domain.FileEntry, error) {
	if dirPath == "/etc" {
		return nil, apperrors.NewForbiddenError("Access restricted to home directory").WithCause(domain.ErrOutsideHome)
	}
	entries, ok := m.entries[dirPath]
	if !ok {
		return nil, apperrors.NewNotFoundError("Directory not found").WithCause(domain.ErrDirectoryNotFound)
	}
	return entries, nil
}

func (m *MockFileService) ResolvePDF(path string) (string, error) { return path, nil }

type nopReadSeeker struct{ *bytes.Reader }

func (nopReadSeeker) Close() error { return nil }

type MockPaperService struct {
	pdf      []byte
	pages    []domain.PageText
	meta     *domain.PaperMetadata
	recent   []*domain.Paper
	lastPage *int
	lastLim  int
}

func (m *MockPaperService) Open(path string) (*domain.OpenFile, error) {
	if m.pdf == nil {
		return nil, apperrors.NewNotFoundError("PDF not found").WithCause(domain.ErrPaperNotFound)
	}
	return &domain.OpenFile{
		Name:    "paper.pdf",
		ModTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Content: nopReadSeeker{bytes.NewReader(m.pdf)},
	}, nil
}

func (m *MockPaperService) Text(ctx context.Context, path string, page *int) (*domain.PaperText, error) {
	m.lastPage = page
	if page != nil {
		if *page >= len(m.pages) {
			return &domain.PaperText{Pages: []domain.PageText{}}, nil
		}
		return &domain.PaperText{Pages: []domain.PageText{m.pages[*page]}}, nil
	}
	return &domain.PaperText{Pages: m.pages}, nil
}

func (m *MockPaperService) Metadata(ctx context.Context, path string) (*domain.PaperMetadata, error) {
	return m.meta, nil
}

func (m *MockPaperService) FullText(ctx context.Context, path string) (string, error) {
	return "", nil
}

func (m *MockPaperService) Recent(ctx context.Context, limit int) ([]*domain.Paper, error) {
	m.lastLim = limit
	return m.recent, nil
}

type MockHighlightService struct {
	mu         sync.Mutex
	highlights map[string]*domain.Highlight
	nextID     int
}

func NewMockHighlightService() *MockHighlightService {
	return &MockHighlightService{highlights: make(map[string]*domain.Highlight)}
}

func (m *MockHighlightService) CreateHighlight(ctx context.Context, h *domain.Highlight) (*domain.Highlight, error) {
	if err := h.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	h.ID = "hl-" + strconv.Itoa(m.nextID)
	if h.Color == "" {
		h.Color = domain.DefaultHighlightColor
	}
	m.highlights[h.ID] = h
	return h, nil
}

func (m *MockHighlightService) ListHighlights(ctx context.Context, paperPath string) ([]*domain.Highlight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Highlight
	for _, h := range m.highlights {
		if h.PaperPath == paperPath {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *MockHighlightService) UpdateHighlight(ctx context.Context, id string, update domain.HighlightUpdate) (*domain.Highlight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.highlights[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Highlight not found").WithCause(domain.ErrHighlightNotFound)
	}
	if update.Color != nil {
		h.Color = *update.Color
	}
	if update.Comment != nil {
		h.Comment = *update.Comment
	}
	return h, nil
}

func (m *MockHighlightService) DeleteHighlight(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.highlights[id]; !ok {
		return apperrors.NewNotFoundError("Highlight not found").WithCause(domain.ErrHighlightNotFound)
	}
	delete(m.highlights, id)
	return nil
}

type MockChatService struct {
	models   []domain.ModelInfo
	tokens   []string
	failAt   int
	startErr error
	history  []*domain.StoredChatMessage
	lastUser *domain.AuthUser
	lastAsk  domain.AskRequest
	streams  []*mockChatStream
}

func (m *MockChatService) ListModels(ctx context.Context, user *domain.AuthUser) ([]domain.ModelInfo, error) {
	m.lastUser = user
	return m.models, nil
}

func (m *MockChatService) newStream() (domain.ChatStream, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	s := &mockChatStream{model: "ollama/llama3", tokens: m.tokens, failAt: m.failAt}
	m.streams = append(m.streams, s)
	return s, nil
}

func (m *MockChatService) Ask(ctx context.Context, user *domain.AuthUser, req domain.AskRequest) (domain.ChatStream, error) {
	m.lastUser = user
	m.lastAsk = req
	return m.newStream()
}

func (m *MockChatService) Converse(ctx context.Context, user *domain.AuthUser, req domain.ConversationRequest) (domain.ChatStream, error) {
	m.lastUser = user
	return m.newStream()
}

func (m *MockChatService) History(ctx context.Context, paperPath string) ([]*domain.StoredChatMessage, error) {
	var out []*domain.StoredChatMessage
	for _, msg := range m.history {
		if msg.PaperPath == paperPath {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *MockChatService) ClearHistory(ctx context.Context, paperPath string) (int64, error) {
	var (
		kept    []*domain.StoredChatMessage
		deleted int64
	)
	for _, msg := range m.history {
		if msg.PaperPath == paperPath {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	m.history = kept
	return deleted, nil
}

type mockChatStream struct {
	model  string
	tokens []string
	failAt int
	pos    int
	closed bool
}

func (s *mockChatStream) Model() string { return s.model }

func (s *mockChatStream) Next() (string, error) {
	if s.failAt > 0 && s.pos == s.failAt {
		return "", io.ErrUnexpectedEOF
	}
	if s.pos >= len(s.tokens) {
		return "", io.EOF
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}

func (s *mockChatStream) Close() error {
	s.closed = true
	return nil
}

type MockSubscriptionService struct {
	subs map[string]*domain.Subscription
	err  error
}

func (m *MockSubscriptionService) Enabled() bool { return true }

func (m *MockSubscriptionService) Status(ctx context.Context, userID string) (*domain.Subscription, error) {
	if m.err != nil {
		return nil, m.err
	}
	if sub, ok := m.subs[userID]; ok {
		return sub, nil
	}
	return domain.DefaultSubscription(), nil
}

func (m *MockSubscriptionService) RecordUsage(ctx context.Context, userID string, tokens int, model string) error {
	return nil
}
