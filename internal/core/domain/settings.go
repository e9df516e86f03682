package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Duration is a time.Duration that reads and writes as "24h" in config files.
type Duration time.Duration

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is Groq's OpenAI-compatible cloud API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderLocal is the built-in feature-hashing embedder.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGroq
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderLocal:
		return "Feature hashing (built in)"
	default:
		return unknownDescription
	}
}

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `toml:"provider"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// BaseURL is the API endpoint (for Ollama or compatible servers).
	BaseURL string `toml:"base_url,omitempty"`

	// APIKey is the API key (for OpenAI).
	APIKey string `toml:"api_key,omitempty"`

	// Dimensions overrides the model's known dimension.
	Dimensions int `toml:"dimensions,omitempty"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderGroq {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider `toml:"provider"`

	// Model is the LLM model name.
	Model string `toml:"model"`

	// BaseURL is the API endpoint (for Ollama or compatible servers).
	BaseURL string `toml:"base_url,omitempty"`

	// APIKey is the API key (for OpenAI/Groq).
	APIKey string `toml:"api_key,omitempty"`

	// Temperature controls sampling.
	Temperature float64 `toml:"temperature"`

	// MaxTokens caps the response length.
	MaxTokens int `toml:"max_tokens"`
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls the chunker.
type ChunkingSettings struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// RetrievalSettings controls the retrieval orchestrator.
type RetrievalSettings struct {
	// Layout selects the collection routing table.
	Layout CollectionLayout `toml:"layout"`

	// ResultsPerQuery is n_results for each collection query.
	ResultsPerQuery int `toml:"results_per_query"`

	// SufficiencyThreshold is the minimum distinct document count below
	// which web search is used.
	SufficiencyThreshold int `toml:"sufficiency_threshold"`
}

// WebSearchSettings controls the web search collaborator.
type WebSearchSettings struct {
	Enabled    bool     `toml:"enabled"`
	MaxResults int      `toml:"max_results"`
	Endpoint   string   `toml:"endpoint,omitempty"`
	Timeout    Duration `toml:"timeout"`
}

// ScrapeSettings controls documentation fetching.
type ScrapeSettings struct {
	// Delay is the minimum gap between requests.
	Delay      Duration `toml:"delay"`
	UserAgent  string   `toml:"user_agent"`
	CacheSize  int      `toml:"cache_size"`
	MaxRetries int      `toml:"max_retries"`
	Timeout    Duration `toml:"timeout"`
}

// UpdateSettings controls the background update checker.
type UpdateSettings struct {
	Enabled      bool            `toml:"enabled"`
	Interval     Duration        `toml:"interval"`
	StopTimeout  Duration        `toml:"stop_timeout"`
	HistoryLimit int             `toml:"history_limit"`
	Sources      []WatchedSource `toml:"sources"`
}

// IngestSettings lists local inputs.
type IngestSettings struct {
	// Files are JSON dumps ingested by "ingest all".
	Files []string `toml:"files,omitempty"`

	// WatchDir is the drop directory watched by "ingest watch".
	WatchDir string `toml:"watch_dir,omitempty"`
}

// ServerSettings controls the HTTP API.
type ServerSettings struct {
	Addr string `toml:"addr"`
}

// LogSettings controls logging.
type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Settings holds all application settings.
type Settings struct {
	DataDir   string            `toml:"data_dir"`
	Embedding EmbeddingSettings `toml:"embedding"`
	LLM       LLMSettings       `toml:"llm"`
	Chunking  ChunkingSettings  `toml:"chunking"`
	Retrieval RetrievalSettings `toml:"retrieval"`
	WebSearch WebSearchSettings `toml:"web_search"`
	Scrape    ScrapeSettings    `toml:"scrape"`
	Updates   UpdateSettings    `toml:"updates"`
	Ingest    IngestSettings    `toml:"ingest"`
	Server    ServerSettings    `toml:"server"`
	Log       LogSettings       `toml:"log"`
}

// DefaultUserAgent identifies the scraper to documentation sites.
const DefaultUserAgent = "Mozilla/5.0 (compatible; netassist/1.0; +https://github.com/custodia-labs/netassist)"

// DefaultSettings returns settings with sensible defaults.
// Embeddings work offline with the local provider; the LLM is left on
// Groq and stays disabled until an API key is supplied.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Model:      "feature-hash-768",
			Dimensions: 768,
		},
		LLM: LLMSettings{
			Provider:    AIProviderGroq,
			Model:       "deepseek-r1-distill-llama-70b",
			BaseURL:     GroqBaseURL,
			Temperature: 0.5,
			MaxTokens:   4000,
		},
		Chunking: ChunkingSettings{Size: 1000, Overlap: 200},
		Retrieval: RetrievalSettings{
			Layout:               LayoutShared,
			ResultsPerQuery:      3,
			SufficiencyThreshold: 2,
		},
		WebSearch: WebSearchSettings{
			Enabled:    true,
			MaxResults: 5,
			Timeout:    Duration(15 * time.Second),
		},
		Scrape: ScrapeSettings{
			Delay:      Duration(time.Second),
			UserAgent:  DefaultUserAgent,
			CacheSize:  256,
			MaxRetries: 3,
			Timeout:    Duration(30 * time.Second),
		},
		Updates: UpdateSettings{
			Enabled:      false,
			Interval:     Duration(24 * time.Hour),
			StopTimeout:  Duration(5 * time.Second),
			HistoryLimit: 50,
			Sources:      DefaultWatchedSources(),
		},
		Server: ServerSettings{Addr: ":8000"},
		Log:    LogSettings{Level: "warn", Format: "console"},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderLocal, AIProviderOllama, AIProviderOpenAI}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderGroq, AIProviderOpenAI, AIProviderOllama}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "feature-hash-768",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:   "deepseek-r1-distill-llama-70b",
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"feature-hash-768":       768,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"all-mpnet-base-v2":      768,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns the chunk-then-annotate pipeline for the settings.
func PipelineConfigFor(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "metadata"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.Size,
				"overlap":    c.Overlap,
			},
		},
	}
}
