package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paper-reader/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

// SubscriptionRepository reads plans and usage from Supabase and records
// usage through the increment_token_usage RPC.
type SubscriptionRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSubscriptionRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Configured reports whether the hosted database can be reached.
func (r *SubscriptionRepository) Configured() bool {
	return r.supabaseClient.Configured() && r.supabaseClient.DB() != nil
}

// GetSubscription returns the user's plan merged with usage for its current
// period. Users without a row get the basic plan.
func (r *SubscriptionRepository) GetSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, domain.ErrSubscriptionOffline
	}

	data, _, err := client.From("subscriptions").
		Select("*", "", false).
		Eq("user_id", userID).
		Order("period_start", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return domain.DefaultSubscription(), nil
	}

	row := rows[0]
	sub := &domain.Subscription{
		Tier:        getStringOr(row, "tier", domain.TierBasic),
		Status:      getStringOr(row, "status", "active"),
		TokenLimit:  getInt64(row, "token_limit"),
		PeriodStart: getStringPointer(row, "period_start"),
		PeriodEnd:   getStringPointer(row, "period_end"),
	}

	if sub.PeriodStart != nil {
		used, topup, err := r.getTokenUsage(userID, *sub.PeriodStart)
		if err != nil {
			r.logger.Warn("Failed to fetch token usage", "user_id", userID, "error", err)
		}
		sub.TokensUsed = used
		sub.TopupTokens = topup
	}

	return sub, nil
}

func (r *SubscriptionRepository) getTokenUsage(userID, periodStart string) (int64, int64, error) {
	client := r.supabaseClient.DB()

	data, _, err := client.From("token_usage").
		Select("tokens_used,topup_tokens", "", false).
		Eq("user_id", userID).
		Eq("period_start", periodStart).
		Execute()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get token usage: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return getInt64(rows[0], "tokens_used"), getInt64(rows[0], "topup_tokens"), nil
}

// IncrementTokenUsage adds tokens to the user's usage for the current period.
func (r *SubscriptionRepository) IncrementTokenUsage(ctx context.Context, userID string, tokens int, model string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return domain.ErrSubscriptionOffline
	}

	params := map[string]interface{}{
		"p_user_id": userID,
		"p_tokens":  tokens,
		"p_model":   model,
	}

	// supabase-go returns the raw body and swallows transport errors.
	resp := strings.TrimSpace(client.Rpc("increment_token_usage", "", params))
	if resp == "" {
		return fmt.Errorf("rpc returned empty response")
	}
	var total *int64
	if err := json.Unmarshal([]byte(resp), &total); err != nil {
		return fmt.Errorf("increment_token_usage failed: %s", resp)
	}

	if total != nil {
		r.logger.Debug("Token usage recorded", "user_id", userID, "tokens", tokens, "model", model, "total", *total)
	}
	return nil
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok && val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getStringOr(data map[string]interface{}, key, fallback string) string {
	if s := getString(data, key); s != "" {
		return s
	}
	return fallback
}

func getStringPointer(data map[string]interface{}, key string) *string {
	if str := getString(data, key); str != "" {
		return &str
	}
	return nil
}

func getInt64(data map[string]interface{}, key string) int64 {
	if val, ok := data[key]; ok && val != nil {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}

var _ domain.SubscriptionRepository = (*SubscriptionRepository)(nil)
