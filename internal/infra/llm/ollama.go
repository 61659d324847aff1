package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paper-reader/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

const ollamaListTimeout = 3 * time.Second

// OllamaProvider talks to a local Ollama server through its OpenAI-compatible API.
type OllamaProvider struct {
	*OpenAIProvider
}

// NewOllamaProvider creates a provider for the server at baseURL
// (for example http://localhost:11434).
func NewOllamaProvider(baseURL string) *OllamaProvider {
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	return &OllamaProvider{
		OpenAIProvider: &OpenAIProvider{
			name:   domain.ProviderOllama,
			client: openai.NewClientWithConfig(cfg),
		},
	}
}

// Models lists the models pulled into the local server.
func (p *OllamaProvider) Models(ctx context.Context) ([]domain.ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, ollamaListTimeout)
	defer cancel()

	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ollama models: %w", err)
	}

	out := make([]domain.ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, domain.ModelInfo{
			ID:       domain.ProviderOllama + "/" + m.ID,
			Name:     m.ID + " (local)",
			Provider: domain.ProviderOllama,
		})
	}
	return out, nil
}

var _ domain.LLMProvider = (*OllamaProvider)(nil)
