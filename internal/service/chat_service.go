package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"paper-reader/internal/domain"
	apperrors "paper-reader/pkg/errors"
)

const chatTemperature = 0.3

// ChatService prepares paper context, gates cloud models by plan and relays
// provider streams while tallying usage.
type ChatService struct {
	contexts      domain.ContextService
	catalog       domain.ModelCatalog
	subscriptions domain.SubscriptionService
	history       domain.ChatRepository
	logger        domain.Logger
}

func NewChatService(
	contexts domain.ContextService,
	catalog domain.ModelCatalog,
	subscriptions domain.SubscriptionService,
	history domain.ChatRepository,
	logger domain.Logger,
) *ChatService {
	return &ChatService{
		contexts:      contexts,
		catalog:       catalog,
		subscriptions: subscriptions,
		history:       history,
		logger:        logger,
	}
}

// ListModels returns every reachable model. When plan gating is active,
// cloud models outside the caller's tier are marked locked.
func (s *ChatService) ListModels(ctx context.Context, user *domain.AuthUser) ([]domain.ModelInfo, error) {
	models := s.catalog.Available(ctx)
	if !s.subscriptions.Enabled() {
		return models, nil
	}

	tier := ""
	if user != nil {
		tier = domain.TierBasic
		sub, err := s.subscriptions.Status(ctx, user.ID)
		if err != nil {
			s.logger.Warn("Falling back to basic tier for model list", "user_id", user.ID, "error", err)
		} else {
			tier = sub.Tier
		}
	}

	for i := range models {
		if models[i].Provider == domain.ProviderOllama {
			continue
		}
		models[i].Locked = user == nil || !domain.IsModelAllowed(tier, models[i].ID)
	}
	return models, nil
}

// Ask explains a selected passage.
func (s *ChatService) Ask(ctx context.Context, user *domain.AuthUser, req domain.AskRequest) (domain.ChatStream, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	modelID, err := s.prepareModel(ctx, user, req.Model)
	if err != nil {
		return nil, err
	}

	paperText, err := s.contexts.PrepareContext(ctx, req.PaperPath, req.SelectedText)
	if err != nil {
		return nil, err
	}

	userContent := buildAskUserMessage(req.SelectedText, req.Question)
	messages := []domain.ChatTurn{
		{Role: domain.RoleSystem, Content: buildAskPrompt(paperText)},
		{Role: domain.RoleUser, Content: userContent},
	}
	return s.start(ctx, user, modelID, req.PaperPath, userContent, messages)
}

// Converse continues a multi-turn conversation about a paper.
func (s *ChatService) Converse(ctx context.Context, user *domain.AuthUser, req domain.ConversationRequest) (domain.ChatStream, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	modelID, err := s.prepareModel(ctx, user, req.Model)
	if err != nil {
		return nil, err
	}

	paperText, err := s.contexts.PrepareContext(ctx, req.PaperPath, req.LastContent())
	if err != nil {
		return nil, err
	}

	messages := make([]domain.ChatTurn, 0, len(req.Messages)+1)
	messages = append(messages, domain.ChatTurn{Role: domain.RoleSystem, Content: buildPaperPrompt(paperText)})
	messages = append(messages, req.Messages...)

	userContent := ""
	if n := len(req.Messages); n > 0 && req.Messages[n-1].Role == domain.RoleUser {
		userContent = req.Messages[n-1].Content
	}
	return s.start(ctx, user, modelID, req.PaperPath, userContent, messages)
}

func (s *ChatService) History(ctx context.Context, paperPath string) ([]*domain.StoredChatMessage, error) {
	if paperPath == "" {
		return nil, apperrors.NewValidationError("paper_path is required")
	}
	msgs, err := s.history.ListByPaper(ctx, paperPath)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load chat history", err)
	}
	return msgs, nil
}

func (s *ChatService) ClearHistory(ctx context.Context, paperPath string) (int64, error) {
	if paperPath == "" {
		return 0, apperrors.NewValidationError("paper_path is required")
	}
	n, err := s.history.DeleteByPaper(ctx, paperPath)
	if err != nil {
		return 0, apperrors.NewInternalError("Failed to clear chat history", err)
	}
	s.logger.Info("Chat history cleared", "paper_path", paperPath, "deleted", n)
	return n, nil
}

// prepareModel resolves "auto" and checks the caller may use the model.
func (s *ChatService) prepareModel(ctx context.Context, user *domain.AuthUser, requested string) (string, error) {
	modelID, err := s.resolveModel(ctx, user, requested)
	if err != nil {
		return "", err
	}
	if err := s.authorize(ctx, user, modelID); err != nil {
		return "", err
	}
	return modelID, nil
}

func (s *ChatService) resolveModel(ctx context.Context, user *domain.AuthUser, requested string) (string, error) {
	if requested != domain.AutoModel {
		return requested, nil
	}

	models, err := s.ListModels(ctx, user)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", apperrors.NewUnavailableError("No models available. Install Ollama or set API keys.").
			WithCause(domain.ErrNoModelsAvailable)
	}
	for _, m := range models {
		if !m.Locked {
			return m.ID, nil
		}
	}
	return models[0].ID, nil
}

// authorize enforces the plan allow-list and token budget for cloud models.
func (s *ChatService) authorize(ctx context.Context, user *domain.AuthUser, modelID string) error {
	provider, _, ok := domain.SplitModelID(modelID)
	if !ok {
		return apperrors.NewValidationError("Invalid model id", modelID)
	}
	if provider == domain.ProviderOllama || !s.subscriptions.Enabled() {
		return nil
	}
	if user == nil {
		return apperrors.NewUnauthorizedError("Sign in to use cloud models").WithCause(domain.ErrAuthRequired)
	}

	sub, err := s.subscriptions.Status(ctx, user.ID)
	if err != nil {
		return err
	}
	if !domain.IsModelAllowed(sub.Tier, modelID) {
		return apperrors.NewForbiddenError(fmt.Sprintf("Model %s is not available on the %s plan", modelID, sub.Tier)).
			WithCause(domain.ErrModelNotAllowed)
	}
	if !sub.WithinTokenLimit() {
		return apperrors.NewQuotaError("Monthly token limit reached. Upgrade or buy more tokens.").
			WithCause(domain.ErrTokenLimitReached)
	}
	return nil
}

func (s *ChatService) start(
	ctx context.Context,
	user *domain.AuthUser,
	modelID, paperPath, userContent string,
	messages []domain.ChatTurn,
) (domain.ChatStream, error) {
	providerName, modelName, _ := domain.SplitModelID(modelID)
	provider, ok := s.catalog.Provider(providerName)
	if !ok {
		return nil, apperrors.NewUnavailableError("Model provider not configured: " + providerName).
			WithCause(domain.ErrUnknownProvider)
	}

	upstream, err := provider.Stream(ctx, domain.CompletionRequest{
		Model:       modelName,
		Messages:    messages,
		Temperature: chatTemperature,
	})
	if err != nil {
		s.logger.Error("Failed to start completion", err, "model", modelID)
		return nil, apperrors.NewNetworkError("Model request failed", err)
	}

	s.logger.Info("Chat stream started", "model", modelID, "paper_path", paperPath, "messages", len(messages))
	return &trackedStream{
		svc:         s,
		ctx:         context.WithoutCancel(ctx),
		upstream:    upstream,
		model:       modelID,
		provider:    providerName,
		user:        user,
		paperPath:   paperPath,
		userContent: userContent,
	}, nil
}

// trackedStream relays deltas and, once the provider finishes, stores the
// exchange and bills the reported token total.
type trackedStream struct {
	svc      *ChatService
	ctx      context.Context
	upstream domain.CompletionStream

	model       string
	provider    string
	user        *domain.AuthUser
	paperPath   string
	userContent string

	reply       strings.Builder
	totalTokens int
	finishOnce  sync.Once
}

func (t *trackedStream) Model() string { return t.model }

// Next returns the next non-empty piece of text, or io.EOF when the model is done.
func (t *trackedStream) Next() (string, error) {
	for {
		delta, err := t.upstream.Recv()
		if errors.Is(err, io.EOF) {
			t.finishOnce.Do(t.finish)
			return "", io.EOF
		}
		if err != nil {
			t.svc.logger.Error("Completion stream failed", err, "model", t.model)
			return "", err
		}
		if delta.TotalTokens > 0 {
			t.totalTokens = delta.TotalTokens
		}
		if delta.Content != "" {
			t.reply.WriteString(delta.Content)
			return delta.Content, nil
		}
	}
}

func (t *trackedStream) Close() error {
	return t.upstream.Close()
}

func (t *trackedStream) finish() {
	var msgs []*domain.StoredChatMessage
	if t.userContent != "" {
		msgs = append(msgs, &domain.StoredChatMessage{
			PaperPath: t.paperPath,
			Role:      domain.RoleUser,
			Content:   t.userContent,
			Model:     t.model,
		})
	}
	if t.reply.Len() > 0 {
		msgs = append(msgs, &domain.StoredChatMessage{
			PaperPath: t.paperPath,
			Role:      domain.RoleAssistant,
			Content:   t.reply.String(),
			Model:     t.model,
		})
	}
	if err := t.svc.history.Append(t.ctx, msgs...); err != nil {
		t.svc.logger.Warn("Failed to save chat history", "paper_path", t.paperPath, "error", err)
	}

	if t.user == nil || t.provider == domain.ProviderOllama || t.totalTokens <= 0 {
		return
	}
	if err := t.svc.subscriptions.RecordUsage(t.ctx, t.user.ID, t.totalTokens, t.model); err != nil {
		t.svc.logger.Error("Failed to record token usage", err, "user_id", t.user.ID, "tokens", t.totalTokens)
	}
}

var _ domain.ChatService = (*ChatService)(nil)
