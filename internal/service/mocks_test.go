package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"paper-reader/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) add(s string) {
	m.mu.Lock()
	m.messages = append(m.messages, s)
	m.mu.Unlock()
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.add("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		msg += " - " + err.Error()
	}
	m.add("ERROR: " + msg)
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.add("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.add("WARN: " + msg)
}

// MockHighlightRepository keeps highlights in memory.
type MockHighlightRepository struct {
	items map[string]*domain.Highlight
	seq   int
}

func NewMockHighlightRepository() *MockHighlightRepository {
	return &MockHighlightRepository{items: make(map[string]*domain.Highlight)}
}

func (m *MockHighlightRepository) Create(ctx context.Context, h *domain.Highlight) error {
	m.seq++
	if h.ID == "" {
		h.ID = "h" + string(rune('0'+m.seq))
	}
	h.CreatedAt = time.Unix(int64(m.seq), 0)
	copied := *h
	m.items[h.ID] = &copied
	return nil
}

func (m *MockHighlightRepository) GetByID(ctx context.Context, id string) (*domain.Highlight, error) {
	h, ok := m.items[id]
	if !ok {
		return nil, domain.ErrHighlightNotFound
	}
	copied := *h
	return &copied, nil
}

func (m *MockHighlightRepository) ListByPaper(ctx context.Context, paperPath string) ([]*domain.Highlight, error) {
	out := make([]*domain.Highlight, 0)
	for _, h := range m.items {
		if h.PaperPath == paperPath {
			copied := *h
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockHighlightRepository) Update(ctx context.Context, h *domain.Highlight) error {
	if _, ok := m.items[h.ID]; !ok {
		return domain.ErrHighlightNotFound
	}
	copied := *h
	m.items[h.ID] = &copied
	return nil
}

func (m *MockHighlightRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return domain.ErrHighlightNotFound
	}
	delete(m.items, id)
	return nil
}

// MockSubscriptionRepository counts lookups and records usage calls.
type MockSubscriptionRepository struct {
	mu         sync.Mutex
	configured bool
	subs       map[string]*domain.Subscription
	err        error
	lookups    int
	recorded   []recordedUsage
}

type recordedUsage struct {
	userID string
	tokens int
	model  string
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{configured: true, subs: make(map[string]*domain.Subscription)}
}

func (m *MockSubscriptionRepository) Configured() bool { return m.configured }

func (m *MockSubscriptionRepository) GetSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	if sub, ok := m.subs[userID]; ok {
		copied := *sub
		return &copied, nil
	}
	return domain.DefaultSubscription(), nil
}

func (m *MockSubscriptionRepository) IncrementTokenUsage(ctx context.Context, userID string, tokens int, model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, recordedUsage{userID: userID, tokens: tokens, model: model})
	if sub, ok := m.subs[userID]; ok {
		sub.TokensUsed += int64(tokens)
	}
	return nil
}

// MockChatRepository keeps chat messages in memory.
type MockChatRepository struct {
	mu       sync.Mutex
	messages []*domain.StoredChatMessage
}

func (m *MockChatRepository) Append(ctx context.Context, messages ...*domain.StoredChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, messages...)
	return nil
}

func (m *MockChatRepository) ListByPaper(ctx context.Context, paperPath string) ([]*domain.StoredChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.StoredChatMessage, 0)
	for _, msg := range m.messages {
		if msg.PaperPath == paperPath {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *MockChatRepository) DeleteByPaper(ctx context.Context, paperPath string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.messages[:0]
	var n int64
	for _, msg := range m.messages {
		if msg.PaperPath == paperPath {
			n++
			continue
		}
		kept = append(kept, msg)
	}
	m.messages = kept
	return n, nil
}

// MockProvider streams a fixed script of deltas.
type MockProvider struct {
	name      string
	models    []domain.ModelInfo
	modelsErr error
	deltas    []domain.StreamDelta
	streamErr error
	lastReq   domain.CompletionRequest
}

func (p *MockProvider) Name() string { return p.name }

func (p *MockProvider) Models(ctx context.Context) ([]domain.ModelInfo, error) {
	if p.modelsErr != nil {
		return nil, p.modelsErr
	}
	return append([]domain.ModelInfo(nil), p.models...), nil
}

func (p *MockProvider) Stream(ctx context.Context, req domain.CompletionRequest) (domain.CompletionStream, error) {
	p.lastReq = req
	if p.streamErr != nil {
		return nil, p.streamErr
	}
	return &mockCompletionStream{deltas: p.deltas}, nil
}

type mockCompletionStream struct {
	deltas []domain.StreamDelta
	pos    int
	closed bool
}

func (s *mockCompletionStream) Recv() (domain.StreamDelta, error) {
	if s.pos >= len(s.deltas) {
		return domain.StreamDelta{}, io.EOF
	}
	d := s.deltas[s.pos]
	s.pos++
	return d, nil
}

func (s *mockCompletionStream) Close() error {
	s.closed = true
	return nil
}

// staticTexts serves fixed full text per path.
type staticTexts map[string]string

func (s staticTexts) FullText(ctx context.Context, path string) (string, error) {
	text, ok := s[path]
	if !ok {
		return "", domain.ErrPaperNotFound
	}
	return text, nil
}

// wordCounter counts whitespace separated words as tokens.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
