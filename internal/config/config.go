// Package config loads, validates and persists the .repeal.yml
// configuration, layering environment overrides on top of the file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (REPEAL_*). Nested keys use a double
// underscore: REPEAL_THRESHOLDS__HIGH_CONFIDENCE -> thresholds.high_confidence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: REPEAL_INDEX -> index, etc.
	if err := k.Load(env.Provider("REPEAL_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "REPEAL_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized embedding provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
}

// validIndexes is the set of recognized index values.
var validIndexes = map[IndexType]bool{
	IndexExact:   true,
	IndexChromem: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.EmbeddingProvider == "" {
		return fmt.Errorf("embedding_provider is required")
	}
	if !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be one of openai, ollama", c.EmbeddingProvider)
	}

	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}

	if c.Index != "" && !validIndexes[c.Index] {
		return fmt.Errorf("invalid index %q: must be one of exact, chromem", c.Index)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.MaxChunkChars < 0 {
		return fmt.Errorf("max_chunk_chars must be non-negative")
	}

	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}

	if c.EmbeddingRPM < 0 {
		return fmt.Errorf("embedding_rpm must be non-negative")
	}

	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be non-negative")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}

	t := c.Thresholds
	if t.MinSimilarity < 0 || t.MinSimilarity > 1 {
		return fmt.Errorf("thresholds.min_similarity must be between 0 and 1")
	}
	if t.MediumConfidence < 0 || t.MediumConfidence > 1 {
		return fmt.Errorf("thresholds.medium_confidence must be between 0 and 1")
	}
	if t.HighConfidence < 0 || t.HighConfidence > 1 {
		return fmt.Errorf("thresholds.high_confidence must be between 0 and 1")
	}
	if t.MediumConfidence > t.HighConfidence {
		return fmt.Errorf("thresholds.medium_confidence must not exceed thresholds.high_confidence")
	}
	if t.MatchMin < 1 {
		return fmt.Errorf("thresholds.match_min must be at least 1")
	}
	if t.AdjustmentFactor < 0 {
		return fmt.Errorf("thresholds.adjustment_factor must be non-negative")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
