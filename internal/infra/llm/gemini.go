package llm

import (
	"context"
	"fmt"
	"io"
	"iter"

	"paper-reader/internal/domain"

	"google.golang.org/genai"
)

// GeminiProvider streams from the Gemini API.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a provider authenticated with an API key.
// baseURL may be empty for the public endpoint.
func NewGeminiProvider(ctx context.Context, apiKey, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string { return domain.ProviderGemini }

func (p *GeminiProvider) Models(ctx context.Context) ([]domain.ModelInfo, error) {
	return catalogFor(domain.ProviderGemini), nil
}

func (p *GeminiProvider) Stream(ctx context.Context, req domain.CompletionRequest) (domain.CompletionStream, error) {
	temperature := req.Temperature
	config := &genai.GenerateContentConfig{Temperature: &temperature}

	var contents []*genai.Content
	for _, t := range req.Messages {
		switch t.Role {
		case domain.RoleSystem:
			config.SystemInstruction = genai.NewContentFromText(t.Content, genai.RoleUser)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini request needs at least one user message")
	}

	next, stop := iter.Pull2(p.client.Models.GenerateContentStream(ctx, req.Model, contents, config))
	return &geminiStream{next: next, stop: stop}, nil
}

type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()

	totalTokens int
	done        bool
}

func (s *geminiStream) Recv() (domain.StreamDelta, error) {
	for !s.done {
		resp, err, ok := s.next()
		if !ok {
			s.done = true
			break
		}
		if err != nil {
			return domain.StreamDelta{}, err
		}
		if resp.UsageMetadata != nil {
			s.totalTokens = int(resp.UsageMetadata.TotalTokenCount)
		}
		if text := resp.Text(); text != "" {
			return domain.StreamDelta{Content: text}, nil
		}
	}

	if s.totalTokens > 0 {
		total := s.totalTokens
		s.totalTokens = 0
		return domain.StreamDelta{TotalTokens: total}, nil
	}
	return domain.StreamDelta{}, io.EOF
}

func (s *geminiStream) Close() error {
	s.stop()
	return nil
}

var _ domain.LLMProvider = (*GeminiProvider)(nil)
