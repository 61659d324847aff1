package llm

import (
	"context"
	"errors"
	"io"

	"paper-reader/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider streams chat completions from an OpenAI-compatible endpoint.
type OpenAIProvider struct {
	name         string
	client       *openai.Client
	catalog      []domain.ModelInfo
	includeUsage bool
}

// NewOpenAIProvider creates a provider for api.openai.com. baseURL may be
// empty for the default endpoint.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		name:         domain.ProviderOpenAI,
		client:       openai.NewClientWithConfig(cfg),
		catalog:      catalogFor(domain.ProviderOpenAI),
		includeUsage: true,
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

// Models returns the fixed cloud catalog.
func (p *OpenAIProvider) Models(ctx context.Context) ([]domain.ModelInfo, error) {
	return append([]domain.ModelInfo(nil), p.catalog...), nil
}

func (p *OpenAIProvider) Stream(ctx context.Context, req domain.CompletionRequest) (domain.CompletionStream, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: req.Temperature,
		Stream:      true,
	}
	if p.includeUsage {
		chatReq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	return &openAIStream{stream: stream}, nil
}

func toOpenAIMessages(turns []domain.ChatTurn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		out = append(out, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	return out
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (domain.StreamDelta, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return domain.StreamDelta{}, io.EOF
		}
		if err != nil {
			return domain.StreamDelta{}, err
		}

		var delta domain.StreamDelta
		if len(resp.Choices) > 0 {
			delta.Content = resp.Choices[0].Delta.Content
		}
		if resp.Usage != nil {
			delta.TotalTokens = resp.Usage.TotalTokens
		}
		if delta.Content == "" && delta.TotalTokens == 0 {
			continue
		}
		return delta, nil
	}
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}

var _ domain.LLMProvider = (*OpenAIProvider)(nil)
