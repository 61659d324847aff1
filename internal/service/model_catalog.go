package service

import (
	"context"

	"paper-reader/internal/domain"

	"golang.org/x/sync/errgroup"
)

// ModelCatalog gathers model lists from every configured provider.
type ModelCatalog struct {
	providers []domain.LLMProvider
	byName    map[string]domain.LLMProvider
	logger    domain.Logger
}

// NewModelCatalog keeps providers in the order given; that order decides
// which model "auto" resolves to.
func NewModelCatalog(logger domain.Logger, providers ...domain.LLMProvider) *ModelCatalog {
	c := &ModelCatalog{byName: make(map[string]domain.LLMProvider), logger: logger}
	for _, p := range providers {
		if p == nil {
			continue
		}
		c.providers = append(c.providers, p)
		c.byName[p.Name()] = p
	}
	return c
}

// Available queries providers concurrently. A provider that fails (a stopped
// Ollama server, for instance) contributes no models.
func (c *ModelCatalog) Available(ctx context.Context) []domain.ModelInfo {
	results := make([][]domain.ModelInfo, len(c.providers))

	var g errgroup.Group
	for i, p := range c.providers {
		g.Go(func() error {
			models, err := p.Models(ctx)
			if err != nil {
				c.logger.Debug("Provider models unavailable", "provider", p.Name(), "error", err)
				return nil
			}
			results[i] = models
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.ModelInfo, 0)
	for _, models := range results {
		out = append(out, models...)
	}
	return out
}

func (c *ModelCatalog) Provider(name string) (domain.LLMProvider, bool) {
	p, ok := c.byName[name]
	return p, ok
}

var _ domain.ModelCatalog = (*ModelCatalog)(nil)
