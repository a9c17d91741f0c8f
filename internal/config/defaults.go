package config

import "github.com/poleguard/repeal/internal/engine"

// EmbeddingPreset describes the model choices for a provider.
type EmbeddingPreset struct {
	Model      string
	Dimensions int
}

// embeddingPresets maps each provider to its default embedding model.
var embeddingPresets = map[ProviderType]EmbeddingPreset{
	ProviderOpenAI: {Model: "text-embedding-3-small", Dimensions: 1536},
	ProviderOllama: {Model: "nomic-embed-text", Dimensions: 768},
}

// DefaultIncludes are glob patterns for spec documents picked up by
// directory ingestion.
var DefaultIncludes = []string{
	"**/*.pdf",
	"**/*.txt",
	"**/*.md",
}

// DefaultExcludes are glob patterns skipped during directory ingestion.
var DefaultExcludes = []string{
	".git/**",
	".repeal/**",
	"node_modules/**",
	"vendor/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingProvider:   ProviderOpenAI,
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 1536,
		EmbeddingRPM:        0,
		OllamaBaseURL:       "http://localhost:11434",
		Index:               IndexExact,
		DataDir:             ".repeal",
		MaxChunkChars:       1200,
		Include:             DefaultIncludes,
		Exclude:             DefaultExcludes,
		MaxConcurrency:      5,
		Thresholds:          engine.DefaultThresholds(),
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
		},
		Server: ServerConfig{
			Port:     8080,
			AllowAll: false,
		},
	}
}

// GetPreset returns the embedding preset for the given provider.
// Returns the OpenAI preset if the provider is not recognized.
func GetPreset(provider ProviderType) EmbeddingPreset {
	if preset, ok := embeddingPresets[provider]; ok {
		return preset
	}
	return embeddingPresets[ProviderOpenAI]
}
