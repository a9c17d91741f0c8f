package config

import "github.com/poleguard/repeal/internal/engine"

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// IndexType selects the retrieval index implementation.
type IndexType string

const (
	// IndexExact scores every corpus chunk on each query.
	IndexExact IndexType = "exact"
	// IndexChromem serves queries from a chromem-go collection built
	// from the corpus snapshot.
	IndexChromem IndexType = "chromem"
)

// Config is the top-level repeal configuration, corresponding to .repeal.yml.
type Config struct {
	EmbeddingProvider   ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int          `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`
	EmbeddingRPM        int          `yaml:"embedding_rpm" koanf:"embedding_rpm"`
	OllamaBaseURL       string       `yaml:"ollama_base_url" koanf:"ollama_base_url"`

	Index         IndexType `yaml:"index" koanf:"index"`
	DataDir       string    `yaml:"data_dir" koanf:"data_dir"`
	MaxChunkChars int       `yaml:"max_chunk_chars" koanf:"max_chunk_chars"`

	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`

	MaxConcurrency int `yaml:"max_concurrency" koanf:"max_concurrency"`

	Thresholds engine.ThresholdConfig `yaml:"thresholds" koanf:"thresholds"`
	Cache      CacheConfig            `yaml:"cache" koanf:"cache"`
	Server     ServerConfig           `yaml:"server" koanf:"server"`
}

// CacheConfig controls the in-memory verdict cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" koanf:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds" koanf:"ttl_seconds"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}
