package config

import (
	"context"
	"database/sql"
	"fmt"

	"paper-reader/internal/domain"
	"paper-reader/internal/infra/llm"
	"paper-reader/internal/infra/supabase"
	"paper-reader/internal/repository"
	"paper-reader/internal/service"
	"paper-reader/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         *logger.AppLogger
	DB             *sql.DB
	SupabaseClient domain.SupabaseClient

	PaperRepository        domain.PaperRepository
	HighlightRepository    domain.HighlightRepository
	ChatRepository         domain.ChatRepository
	SubscriptionRepository domain.SubscriptionRepository

	AuthService         domain.AuthService
	FileService         domain.FileService
	PaperService        domain.PaperService
	HighlightService    domain.HighlightService
	ContextService      domain.ContextService
	SubscriptionService domain.SubscriptionService
	ModelCatalog        domain.ModelCatalog
	ChatService         domain.ChatService
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg domain.Config) (*Container, error) {
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	db, err := repository.OpenDatabase(cfg.GetDatabasePath())
	if err != nil {
		return nil, err
	}

	// Supabase is optional; without it every model is free and usage is not tracked.
	supabaseClient := supabase.NewSupabaseClient(cfg, appLogger)
	if supabaseClient.Configured() {
		if err := supabaseClient.Initialize(); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		appLogger.Warn("Supabase not configured, subscription gating disabled")
	}

	// Initialize repositories
	paperRepo := repository.NewPaperRepository(db, appLogger)
	highlightRepo := repository.NewHighlightRepository(db, appLogger)
	chatRepo := repository.NewChatRepository(db, appLogger)
	subscriptionRepo := repository.NewSubscriptionRepository(supabaseClient, appLogger)

	providers, err := newProviders(ctx, cfg, appLogger)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Initialize services
	authService := service.NewAuthService(cfg.GetJWTSecret(), appLogger)
	if !authService.Enabled() {
		appLogger.Warn("SUPABASE_JWT_SECRET not set, all requests are anonymous")
	}
	fileService := service.NewFileService(cfg.GetHomeDir(), appLogger)
	paperService := service.NewPaperService(
		fileService,
		service.NewPDFProcessor(appLogger),
		paperRepo,
		cfg.GetTextCacheSize(),
		appLogger,
	)
	contextService := service.NewContextService(
		paperService,
		service.NewTokenCounter(appLogger),
		service.ContextOptions{
			TokenThreshold: cfg.GetContextTokenThreshold(),
			TopK:           cfg.GetContextTopK(),
			ChunkWords:     cfg.GetContextChunkWords(),
		},
		appLogger,
	)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, appLogger)
	catalog := service.NewModelCatalog(appLogger, providers...)

	return &Container{
		Config:         cfg,
		Logger:         appLogger,
		DB:             db,
		SupabaseClient: supabaseClient,

		PaperRepository:        paperRepo,
		HighlightRepository:    highlightRepo,
		ChatRepository:         chatRepo,
		SubscriptionRepository: subscriptionRepo,

		AuthService:         authService,
		FileService:         fileService,
		PaperService:        paperService,
		HighlightService:    service.NewHighlightService(highlightRepo, appLogger),
		ContextService:      contextService,
		SubscriptionService: subscriptionService,
		ModelCatalog:        catalog,
		ChatService:         service.NewChatService(contextService, catalog, subscriptionService, chatRepo, appLogger),
	}, nil
}

// newProviders registers a cloud provider for every configured API key.
// Ollama is always registered and simply lists nothing when unreachable.
func newProviders(ctx context.Context, cfg domain.Config, log domain.Logger) ([]domain.LLMProvider, error) {
	var providers []domain.LLMProvider

	if key := cfg.GetOpenAIKey(); key != "" {
		providers = append(providers, llm.NewOpenAIProvider(key, ""))
	}
	if key := cfg.GetAnthropicKey(); key != "" {
		providers = append(providers, llm.NewAnthropicProvider(key, ""))
	}
	if key := cfg.GetGeminiKey(); key != "" {
		gemini, err := llm.NewGeminiProvider(ctx, key, "")
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		providers = append(providers, gemini)
	}
	providers = append(providers, llm.NewOllamaProvider(cfg.GetOllamaBaseURL()))

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	log.Info("LLM providers registered", "providers", names)
	return providers, nil
}

// Close releases the database and flushes the logger.
func (c *Container) Close() error {
	err := c.DB.Close()
	_ = c.Logger.Sync()
	return err
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
