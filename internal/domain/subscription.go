package domain

import (
	"context"
	"strings"
)

const (
	TierBasic = "basic"
	TierPro   = "pro"
	TierMax   = "max"
)

// TierModels lists the cloud models each tier may use. Local models are
// always allowed.
var TierModels = map[string][]string{
	TierBasic: {},
	TierPro:   {"openai/gpt-4o-mini"},
	TierMax: {
		"openai/gpt-4o",
		"openai/gpt-4o-mini",
		"anthropic/claude-sonnet-4-20250514",
		"anthropic/claude-haiku-4-20250414",
		"gemini/gemini-2.0-flash",
	},
}

// Subscription is a user's plan together with usage in the current period.
type Subscription struct {
	Tier        string  `json:"tier"`
	Status      string  `json:"status"`
	TokenLimit  int64   `json:"token_limit"`
	TokensUsed  int64   `json:"tokens_used"`
	TopupTokens int64   `json:"topup_tokens"`
	PeriodStart *string `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`
}

// DefaultSubscription is reported for users without a subscription row.
func DefaultSubscription() *Subscription {
	return &Subscription{Tier: TierBasic, Status: "active"}
}

// IsModelAllowed reports whether tier may use modelID.
func IsModelAllowed(tier, modelID string) bool {
	if strings.HasPrefix(modelID, ProviderOllama+"/") {
		return true
	}
	for _, m := range TierModels[tier] {
		if m == modelID {
			return true
		}
	}
	return false
}

// WithinTokenLimit reports whether the subscription still has budget.
func (s *Subscription) WithinTokenLimit() bool {
	if s.Tier == TierBasic {
		return true
	}
	return s.TokensUsed < s.TokenLimit+s.TopupTokens
}

// SubscriptionRepository reads plans and records usage in the hosted database.
type SubscriptionRepository interface {
	Configured() bool
	GetSubscription(ctx context.Context, userID string) (*Subscription, error)
	IncrementTokenUsage(ctx context.Context, userID string, tokens int, model string) error
}

// SubscriptionService is the cached view over SubscriptionRepository.
type SubscriptionService interface {
	Enabled() bool
	Status(ctx context.Context, userID string) (*Subscription, error)
	RecordUsage(ctx context.Context, userID string, tokens int, model string) error
}
