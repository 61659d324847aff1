package domain

import (
	"context"
	"strings"
	"time"
)

const (
	// AutoModel asks the server to pick the first available model.
	AutoModel = "auto"

	DefaultAskQuestion = "Explain this passage."

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"

	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message exchanged with a model.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StoredChatMessage is a persisted chat message for a paper.
type StoredChatMessage struct {
	ID        string    `json:"id"`
	PaperPath string    `json:"paper_path"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// AskRequest asks a question about a selected passage.
type AskRequest struct {
	PaperPath    string `json:"paper_path"`
	SelectedText string `json:"selected_text"`
	Question     string `json:"question"`
	Model        string `json:"model"`
}

// ApplyDefaults fills optional fields.
func (r *AskRequest) ApplyDefaults() {
	if strings.TrimSpace(r.Question) == "" {
		r.Question = DefaultAskQuestion
	}
	if r.Model == "" {
		r.Model = AutoModel
	}
}

// Validate checks required fields. An empty selection is allowed.
func (r *AskRequest) Validate() error {
	if r.PaperPath == "" {
		return &ValidationError{Field: "paper_path", Message: "paper path is required"}
	}
	return nil
}

// ConversationRequest continues a multi-turn chat about a paper.
type ConversationRequest struct {
	PaperPath string     `json:"paper_path"`
	Messages  []ChatTurn `json:"messages"`
	Model     string     `json:"model"`
}

// ApplyDefaults fills optional fields.
func (r *ConversationRequest) ApplyDefaults() {
	if r.Model == "" {
		r.Model = AutoModel
	}
}

// Validate checks required fields.
func (r *ConversationRequest) Validate() error {
	if r.PaperPath == "" {
		return &ValidationError{Field: "paper_path", Message: "paper path is required"}
	}
	for _, m := range r.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant:
		default:
			return &ValidationError{Field: "messages", Message: "role must be user or assistant"}
		}
	}
	return nil
}

// LastContent returns the content of the final message, or "".
func (r *ConversationRequest) LastContent() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

// ModelInfo describes a selectable model.
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Locked   bool   `json:"locked"`
}

// SplitModelID splits "provider/name" into its parts.
func SplitModelID(id string) (provider, name string, ok bool) {
	provider, name, ok = strings.Cut(id, "/")
	if !ok || provider == "" || name == "" {
		return "", "", false
	}
	return provider, name, true
}

// CompletionRequest is sent to a provider. Model is the provider-local name.
type CompletionRequest struct {
	Model       string
	Messages    []ChatTurn
	Temperature float32
}

// StreamDelta is one increment of a streamed completion. TotalTokens is set
// when the provider reports usage, usually on the last delta.
type StreamDelta struct {
	Content     string
	TotalTokens int
}

// CompletionStream yields deltas until Recv returns io.EOF.
type CompletionStream interface {
	Recv() (StreamDelta, error)
	Close() error
}

// LLMProvider streams completions from one model vendor.
type LLMProvider interface {
	Name() string
	Models(ctx context.Context) ([]ModelInfo, error)
	Stream(ctx context.Context, req CompletionRequest) (CompletionStream, error)
}

// ChatRepository persists chat history per paper.
type ChatRepository interface {
	Append(ctx context.Context, messages ...*StoredChatMessage) error
	ListByPaper(ctx context.Context, paperPath string) ([]*StoredChatMessage, error)
	DeleteByPaper(ctx context.Context, paperPath string) (int64, error)
}

// ContextService prepares paper text for a prompt.
type ContextService interface {
	PrepareContext(ctx context.Context, paperPath, query string) (string, error)
}

// ModelCatalog lists models across providers.
type ModelCatalog interface {
	Available(ctx context.Context) []ModelInfo
	Provider(name string) (LLMProvider, bool)
}

// ChatStream relays tokens to the caller. Close must be called.
type ChatStream interface {
	Model() string
	Next() (string, error)
	Close() error
}

// ChatService runs chat requests against the selected provider.
type ChatService interface {
	ListModels(ctx context.Context, user *AuthUser) ([]ModelInfo, error)
	Ask(ctx context.Context, user *AuthUser, req AskRequest) (ChatStream, error)
	Converse(ctx context.Context, user *AuthUser, req ConversationRequest) (ChatStream, error)
	History(ctx context.Context, paperPath string) ([]*StoredChatMessage, error)
	ClearHistory(ctx context.Context, paperPath string) (int64, error)
}
