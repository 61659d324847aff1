package handler

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"paper-reader/internal/domain"
	apperrors "paper-reader/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()

	var (
		events  []sseEvent
		current sseEvent
	)
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.name != "" {
				events = append(events, current)
			}
			current = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestChatHandler_AskStreamsTokens(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := newTestServer(t)
	ts.chat.tokens = []string{"Attention ", "is ", "all."}

	rr := ts.do(http.MethodPost, "/api/chat/ask", map[string]string{
		"paper_path":    "/home/test/attention.pdf",
		"selected_text": "multi-head attention",
	}, map[string]string{"Authorization": "Bearer good"})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "ollama/llama3", rr.Header().Get("X-Model"))
	require.NotNil(t, ts.chat.lastUser)
	assert.Equal(t, "user-1", ts.chat.lastUser.ID)
	assert.Equal(t, "multi-head attention", ts.chat.lastAsk.SelectedText)

	events := parseSSE(t, rr.Body.String())
	require.Len(t, events, 4)

	var got strings.Builder
	for _, ev := range events[:3] {
		require.Equal(t, "token", ev.name)
		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(ev.data), &payload))
		got.WriteString(payload["content"])
	}
	assert.Equal(t, "Attention is all.", got.String())
	assert.Equal(t, "done", events[3].name)
	assert.Equal(t, "{}", events[3].data)

	require.Len(t, ts.chat.streams, 1)
	assert.True(t, ts.chat.streams[0].closed)
}

func TestChatHandler_StreamErrorEmitsErrorEvent(t *testing.T) {
	ts := newTestServer(t)
	ts.chat.tokens = []string{"partial", "never"}
	ts.chat.failAt = 1

	rr := ts.do(http.MethodPost, "/api/chat/conversation", map[string]interface{}{
		"paper_path": "/home/test/attention.pdf",
		"messages":   []domain.ChatTurn{{Role: domain.RoleUser, Content: "What is a transformer?"}},
	}, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, ts.chat.lastUser)

	events := parseSSE(t, rr.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, "token", events[0].name)
	assert.Equal(t, "error", events[1].name)
	assert.Contains(t, events[1].data, `"error"`)
	assert.True(t, ts.chat.streams[0].closed)
}

func TestChatHandler_StartErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"auth required", apperrors.NewUnauthorizedError("Sign in to use cloud models").WithCause(domain.ErrAuthRequired), http.StatusUnauthorized, "Sign in to use cloud models"},
		{"plan", apperrors.NewForbiddenError("Model not available on your plan").WithCause(domain.ErrModelNotAllowed), http.StatusForbidden, "Model not available on your plan"},
		{"quota", apperrors.NewQuotaError("Monthly token limit reached").WithCause(domain.ErrTokenLimitReached), http.StatusTooManyRequests, "Monthly token limit reached"},
		{"no models", apperrors.NewUnavailableError("No models available. Install Ollama or set API keys.").WithCause(domain.ErrNoModelsAvailable), http.StatusServiceUnavailable, "No models available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.chat.startErr = tt.err

			rr := ts.do(http.MethodPost, "/api/chat/ask", map[string]string{
				"paper_path":    "/p.pdf",
				"selected_text": "x",
				"model":         "openai/gpt-4o",
			}, nil)

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.detail)
			assert.Empty(t, ts.chat.streams)
		})
	}
}

func TestChatHandler_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/ask", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"detail":"Invalid request body"}`, rr.Body.String())
}

func TestChatHandler_Models(t *testing.T) {
	ts := newTestServer(t)
	ts.chat.models = []domain.ModelInfo{
		{ID: "ollama/llama3", Name: "llama3", Provider: domain.ProviderOllama},
		{ID: "openai/gpt-4o", Name: "gpt-4o", Provider: domain.ProviderOpenAI, Locked: true},
	}

	rr := ts.do(http.MethodGet, "/api/chat/models", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var models []domain.ModelInfo
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&models))
	require.Len(t, models, 2)
	assert.True(t, models[1].Locked)
}

func TestChatHandler_History(t *testing.T) {
	ts := newTestServer(t)
	ts.chat.history = []*domain.StoredChatMessage{
		{ID: "1", PaperPath: "/a.pdf", Role: domain.RoleUser, Content: "q"},
		{ID: "2", PaperPath: "/a.pdf", Role: domain.RoleAssistant, Content: "a"},
		{ID: "3", PaperPath: "/b.pdf", Role: domain.RoleUser, Content: "other"},
	}

	rr := ts.do(http.MethodGet, "/api/chat/history?paper_path=/a.pdf", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var msgs []domain.StoredChatMessage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&msgs))
	assert.Len(t, msgs, 2)

	rr = ts.do(http.MethodDelete, "/api/chat/history?paper_path=/a.pdf", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":2}`, rr.Body.String())
	assert.Len(t, ts.chat.history, 1)
}

func TestChatHandler_RateLimited(t *testing.T) {
	ts := newTestServer(t)
	logger := NewMockHandlerLogger()
	ts.router = NewRouter(Handlers{
		Files:        NewFileHandler(ts.files, logger),
		Papers:       NewPaperHandler(ts.papers, logger),
		Highlights:   NewHighlightHandler(ts.highlights, logger),
		Chat:         NewChatHandler(ts.chat, logger),
		Subscription: NewSubscriptionHandler(ts.subscriptions, logger),
	}, RouterOptions{
		Auth:        NewAuthMiddleware(ts.auth, logger),
		RateLimiter: NewRateLimiter(1),
		Logger:      logger,
	})

	body := map[string]string{"paper_path": "/p.pdf", "selected_text": "x"}
	first := ts.do(http.MethodPost, "/api/chat/ask", body, nil)
	second := ts.do(http.MethodPost, "/api/chat/ask", body, nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// Model listing is not limited.
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/chat/models", nil, nil).Code)
}
