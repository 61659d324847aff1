package llm

import "paper-reader/internal/domain"

// cloudModels is the fixed list offered when the matching API key is set.
var cloudModels = []domain.ModelInfo{
	{ID: "openai/gpt-4o", Name: "GPT-4o", Provider: domain.ProviderOpenAI},
	{ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", Provider: domain.ProviderOpenAI},
	{ID: "anthropic/claude-sonnet-4-20250514", Name: "Claude Sonnet 4", Provider: domain.ProviderAnthropic},
	{ID: "anthropic/claude-haiku-4-20250414", Name: "Claude Haiku", Provider: domain.ProviderAnthropic},
	{ID: "gemini/gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: domain.ProviderGemini},
}

func catalogFor(provider string) []domain.ModelInfo {
	var out []domain.ModelInfo
	for _, m := range cloudModels {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}
