package ai

import (
	"fmt"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before they are saved.
type ConfigValidator struct{}

// NewConfigValidator creates a validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding rejects a dimension that contradicts the model's known
// vector size, then pings the provider. Collections keep the dimension they
// were created with, so a wrong value here only surfaces at query time.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil {
		return nil
	}
	if known, ok := domain.EmbeddingDimensions()[config.Model]; ok && config.Dimensions > 0 && config.Dimensions != known {
		return fmt.Errorf("%w: %s produces %d dimensions, configured %d",
			domain.ErrDimensionMismatch, config.Model, known, config.Dimensions)
	}
	return ValidateEmbeddingConfig(config)
}

// ValidateLLM rejects providers that cannot chat, then pings the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil {
		return nil
	}
	if config.Provider == domain.AIProviderLocal {
		return fmt.Errorf("%w: %s has no language model", domain.ErrInvalidInput, config.Provider)
	}
	return ValidateLLMConfig(config)
}
