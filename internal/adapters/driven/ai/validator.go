package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations by creating the
// selected service and pinging it.
type ConfigValidator struct {
	factory *Factory
}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator(factory *Factory) *ConfigValidator {
	return &ConfigValidator{factory: factory}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	svc, err := v.factory.CreateEmbeddingService(ctx, config)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, config.Provider, err)
	}
	return nil
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	svc, err := v.factory.CreateLLMService(ctx, config)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrLLMUnavailable, config.Provider, err)
	}
	return nil
}
