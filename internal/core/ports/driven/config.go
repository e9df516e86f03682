package driven

import "github.com/custodia-labs/netassist/internal/core/domain"

// ConfigStore loads and saves typed application settings.
// Load layers defaults, the config file and the environment; Save writes
// only the config file.
type ConfigStore interface {
	// Load returns the effective settings.
	Load() (domain.Settings, error)

	// Save persists settings to the config file.
	Save(settings domain.Settings) error

	// Path returns the config file path.
	Path() string
}

// AIConfigValidator validates AI provider configurations by connecting
// to the provider. Implementations live in the ai adapter package.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration.
	// Returns nil if the configuration is valid and the service is reachable.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM validates an LLM configuration.
	// Returns nil if the configuration is valid and the service is reachable.
	ValidateLLM(config *domain.LLMSettings) error
}
