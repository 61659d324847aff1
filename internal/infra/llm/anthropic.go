package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"paper-reader/internal/domain"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

const anthropicMaxTokens = 4096

// AnthropicProvider streams from the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a provider. baseURL may be empty for the
// public endpoint.
func NewAnthropicProvider(apiKey, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{client: anthropic.NewClient(opts...)}
}

func (p *AnthropicProvider) Name() string { return domain.ProviderAnthropic }

func (p *AnthropicProvider) Models(ctx context.Context) ([]domain.ModelInfo, error) {
	return catalogFor(domain.ProviderAnthropic), nil
}

func (p *AnthropicProvider) Stream(ctx context.Context, req domain.CompletionRequest) (domain.CompletionStream, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	// System turns travel in a dedicated field.
	var system []string
	for _, t := range req.Messages {
		switch t.Role {
		case domain.RoleSystem:
			system = append(system, t.Content)
		case domain.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	// HTTP failures surface on the first event; report them before any
	// bytes reach the client.
	primed := stream.Next()
	if !primed {
		if err := stream.Err(); err != nil {
			_ = stream.Close()
			return nil, fmt.Errorf("anthropic request failed: %w", err)
		}
	}
	return &anthropicStream{stream: stream, primed: primed}, nil
}

type anthropicStream struct {
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	message anthropic.Message
	primed  bool
	done    bool
}

func (s *anthropicStream) Recv() (domain.StreamDelta, error) {
	if s.done {
		return domain.StreamDelta{}, io.EOF
	}
	for s.primed || s.stream.Next() {
		s.primed = false
		event := s.stream.Current()
		if err := s.message.Accumulate(event); err != nil {
			return domain.StreamDelta{}, fmt.Errorf("anthropic stream: %w", err)
		}

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				return domain.StreamDelta{Content: delta.Text}, nil
			}
		case anthropic.MessageStopEvent:
			s.done = true
			usage := s.message.Usage
			if total := int(usage.InputTokens + usage.OutputTokens); total > 0 {
				return domain.StreamDelta{TotalTokens: total}, nil
			}
			return domain.StreamDelta{}, io.EOF
		}
	}
	if err := s.stream.Err(); err != nil {
		return domain.StreamDelta{}, fmt.Errorf("anthropic stream: %w", err)
	}
	s.done = true
	return domain.StreamDelta{}, io.EOF
}

func (s *anthropicStream) Close() error {
	return s.stream.Close()
}

var _ domain.LLMProvider = (*AnthropicProvider)(nil)
