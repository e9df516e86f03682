package driving

import "github.com/custodia-labs/netassist/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings.
	Get() (domain.Settings, error)

	// Save persists settings.
	Save(settings domain.Settings) error

	// SetEmbeddingProvider switches the embedding provider.
	// An empty model selects the provider default.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider switches the LLM provider.
	// An empty model selects the provider default.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the settings are internally consistent.
	Validate() error

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig pings the configured LLM provider.
	ValidateLLMConfig() error

	// ConfigPath returns where settings are saved.
	ConfigPath() string
}
