package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/logger"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the name of the settings file inside the config directory.
const ConfigFile = "config.toml"

// ConfigStore is a file-based implementation of driven.ConfigStore.
// Settings are layered: defaults, then config.toml, then a .env file, then
// the process environment. Save only ever writes config.toml.
type ConfigStore struct {
	mu        sync.Mutex
	configDir string
	filePath  string
	envFile   string
	lookupEnv func(string) (string, bool)
}

// Option configures a ConfigStore.
type Option func(*ConfigStore)

// WithEnvFile sets the .env file read during Load. Missing files are ignored.
func WithEnvFile(path string) Option {
	return func(s *ConfigStore) {
		s.envFile = path
	}
}

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(s *ConfigStore) {
		s.lookupEnv = fn
	}
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.netassist.
func NewConfigStore(configDir string, opts ...Option) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".netassist")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		configDir: configDir,
		filePath:  filepath.Join(configDir, ConfigFile),
		envFile:   ".env",
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Dir returns the configuration directory.
func (s *ConfigStore) Dir() string {
	return s.configDir
}

// Load returns the effective settings.
func (s *ConfigStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &settings); err != nil {
			return domain.Settings{}, fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return domain.Settings{}, fmt.Errorf("reading %s: %w", s.filePath, err)
	}

	dotenv := map[string]string{}
	if s.envFile != "" {
		if m, err := godotenv.Read(s.envFile); err == nil {
			dotenv = m
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("ignoring unreadable env file %s: %v", s.envFile, err)
		}
	}

	// The process environment wins over .env.
	lookup := func(key string) (string, bool) {
		if v, ok := s.lookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}
	applyEnv(&settings, lookup)

	if settings.DataDir == "" {
		settings.DataDir = filepath.Join(s.configDir, "data")
	}
	return settings, nil
}

// Save persists settings to config.toml with owner-only permissions.
func (s *ConfigStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// applyEnv overlays environment variables onto settings.
func applyEnv(s *domain.Settings, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("CHROMA_PERSIST_DIRECTORY"); ok {
		s.DataDir = v
	}
	str("NETASSIST_DATA_DIR", &s.DataDir)
	str("USER_AGENT", &s.Scrape.UserAgent)
	str("LOG_LEVEL", &s.Log.Level)
	str("LOG_FORMAT", &s.Log.Format)

	if v, ok := lookup("SCRAPE_DELAY"); ok {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
			s.Scrape.Delay = domain.Duration(time.Duration(secs * float64(time.Second)))
		} else {
			logger.Warn("ignoring SCRAPE_DELAY=%q: want seconds", v)
		}
	}

	if v, ok := lookup("EMBEDDING_PROVIDER"); ok {
		p := domain.AIProvider(strings.ToLower(v))
		if p != s.Embedding.Provider {
			s.Embedding.Provider = p
			s.Embedding.Model = domain.DefaultEmbeddingModels()[p]
			s.Embedding.BaseURL = ""
		}
	}
	str("EMBEDDING_MODEL", &s.Embedding.Model)
	str("EMBEDDING_BASE_URL", &s.Embedding.BaseURL)
	if d, ok := domain.EmbeddingDimensions()[s.Embedding.Model]; ok {
		s.Embedding.Dimensions = d
	}

	if v, ok := lookup("LLM_PROVIDER"); ok {
		p := domain.AIProvider(strings.ToLower(v))
		if p != s.LLM.Provider {
			s.LLM.Provider = p
			s.LLM.Model = domain.DefaultLLMModels()[p]
			s.LLM.BaseURL = ""
			if p == domain.AIProviderGroq {
				s.LLM.BaseURL = domain.GroqBaseURL
			}
		}
	}

	if v, ok := lookup("OPENAI_API_KEY"); ok {
		if s.Embedding.Provider == domain.AIProviderOpenAI {
			s.Embedding.APIKey = v
		}
		if s.LLM.Provider == domain.AIProviderOpenAI {
			s.LLM.APIKey = v
		}
	}
	if s.LLM.Provider == domain.AIProviderGroq {
		str("GROQ_API_KEY", &s.LLM.APIKey)
		str("GROQ_MODEL", &s.LLM.Model)
	}

	if v, ok := lookup("UPDATE_CHECK_INTERVAL"); ok {
		if hours, err := strconv.ParseFloat(v, 64); err == nil && hours > 0 {
			s.Updates.Interval = domain.Duration(time.Duration(hours * float64(time.Hour)))
		} else {
			logger.Warn("ignoring UPDATE_CHECK_INTERVAL=%q: want hours", v)
		}
	}
	if v, ok := lookup("ENABLE_WEB_SEARCH"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.WebSearch.Enabled = b
		} else {
			logger.Warn("ignoring ENABLE_WEB_SEARCH=%q: want true or false", v)
		}
	}
	intVar(lookup, "MAX_SEARCH_RESULTS", &s.WebSearch.MaxResults)
	intVar(lookup, "SUFFICIENCY_THRESHOLD", &s.Retrieval.SufficiencyThreshold)
	if v, ok := lookup("COLLECTION_LAYOUT"); ok {
		s.Retrieval.Layout = domain.CollectionLayout(strings.ToLower(v))
	}
}

func intVar(lookup func(string) (string, bool), key string, dst *int) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		logger.Warn("ignoring %s=%q: want a non-negative integer", key, v)
		return
	}
	*dst = n
}
