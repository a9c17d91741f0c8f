package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/poleguard/repeal/internal/cache"
	"github.com/poleguard/repeal/internal/config"
	"github.com/poleguard/repeal/internal/corpus"
	"github.com/poleguard/repeal/internal/embeddings"
	"github.com/poleguard/repeal/internal/pipeline"
	"github.com/poleguard/repeal/internal/retrieval"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `repeal init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config,
// wrapped with a rate limiter when embedding_rpm is set.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	var embedder embeddings.Embedder
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		embedder = embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel))
	case config.ProviderOllama:
		embedder = embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDimensions, cfg.OllamaBaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}
	return embeddings.NewRateLimited(embedder, cfg.EmbeddingRPM), nil
}

// corpusPath returns the on-disk location of the persisted corpus.
func corpusPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "corpus.gob.gz")
}

// dbPath returns the on-disk location of the history database.
func dbPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "repeal.db")
}

// openStore creates the corpus store and loads the persisted corpus if one
// exists.
func openStore(cfg *config.Config, embedder embeddings.Embedder) (*corpus.Store, error) {
	store := corpus.NewStore(embedder, cfg.MaxChunkChars)

	path := corpusPath(cfg)
	if _, err := os.Stat(path); err == nil {
		if err := store.LoadFile(path); err != nil {
			return nil, fmt.Errorf("loading corpus from %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing corpus at %s: %w", path, err)
	}
	return store, nil
}

// newRetriever selects the retrieval index per config.
func newRetriever(cfg *config.Config, embedder embeddings.Embedder, store *corpus.Store) retrieval.Retriever {
	if cfg.Index == config.IndexChromem {
		return retrieval.NewChromemRetriever(embedder, store)
	}
	return retrieval.NewDenseRetriever(embedder, store)
}

// newEvaluator wires the full decision pipeline from config.
func newEvaluator(cfg *config.Config, store *corpus.Store, retriever retrieval.Retriever) *pipeline.Evaluator {
	var verdictCache *cache.Cache
	if cfg.Cache.Enabled {
		verdictCache = cache.New(time.Duration(cfg.Cache.TTLSeconds) * time.Second)
	}
	return pipeline.NewEvaluator(store, retriever, cfg.Thresholds, verdictCache)
}
