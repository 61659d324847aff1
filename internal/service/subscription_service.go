package service

import (
	"context"
	"sync"
	"time"

	"paper-reader/internal/domain"
	apperrors "paper-reader/pkg/errors"
)

const subscriptionCacheTTL = 30 * time.Second

type subscriptionCacheEntry struct {
	sub       *domain.Subscription
	expiresAt time.Time
}

// SubscriptionService caches plan lookups per user and records usage.
type SubscriptionService struct {
	repo   domain.SubscriptionRepository
	logger domain.Logger
	now    func() time.Time

	cacheMu sync.RWMutex
	cache   map[string]subscriptionCacheEntry
	// generation is bumped whenever usage is recorded. A lookup that started
	// under an older generation must not populate the cache.
	generation map[string]uint64
}

func NewSubscriptionService(repo domain.SubscriptionRepository, logger domain.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]subscriptionCacheEntry),

		generation: make(map[string]uint64),
	}
}

// Enabled reports whether plan gating applies.
func (s *SubscriptionService) Enabled() bool {
	return s.repo != nil && s.repo.Configured()
}

// Status returns the user's plan and usage. Without a hosted database every
// user is on the basic plan.
func (s *SubscriptionService) Status(ctx context.Context, userID string) (*domain.Subscription, error) {
	if !s.Enabled() {
		return domain.DefaultSubscription(), nil
	}

	now := s.now()
	s.cacheMu.RLock()
	entry, ok := s.cache[userID]
	gen := s.generation[userID]
	s.cacheMu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		copied := *entry.sub
		return &copied, nil
	}

	sub, err := s.repo.GetSubscription(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to fetch subscription", err, "user_id", userID)
		return nil, apperrors.NewNetworkError("Failed to fetch subscription", err)
	}

	s.cacheMu.Lock()
	if s.generation[userID] == gen {
		s.cache[userID] = subscriptionCacheEntry{sub: sub, expiresAt: now.Add(subscriptionCacheTTL)}
	}
	s.cacheMu.Unlock()

	copied := *sub
	return &copied, nil
}

// RecordUsage adds tokens to the user's ledger and drops the cached plan
// once the increment has landed so the next check sees the new total.
func (s *SubscriptionService) RecordUsage(ctx context.Context, userID string, tokens int, model string) error {
	if !s.Enabled() || tokens <= 0 {
		return nil
	}

	s.invalidate(userID)
	err := s.repo.IncrementTokenUsage(ctx, userID, tokens, model)
	// Lookups that ran while the increment was in flight may hold the old total.
	s.invalidate(userID)
	if err != nil {
		return err
	}
	s.logger.Info("Token usage recorded", "user_id", userID, "tokens", tokens, "model", model)
	return nil
}

func (s *SubscriptionService) invalidate(userID string) {
	s.cacheMu.Lock()
	delete(s.cache, userID)
	s.generation[userID]++
	s.cacheMu.Unlock()
}

var _ domain.SubscriptionService = (*SubscriptionService)(nil)
