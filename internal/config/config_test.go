package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.EmbeddingProvider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.EmbeddingProvider)
	}
	if cfg.Index != IndexExact {
		t.Errorf("expected default index %q, got %q", IndexExact, cfg.Index)
	}
	if cfg.DataDir != ".repeal" {
		t.Errorf("expected default data_dir %q, got %q", ".repeal", cfg.DataDir)
	}
	if cfg.Thresholds.HighConfidence != 0.70 {
		t.Errorf("expected default high_confidence 0.70, got %v", cfg.Thresholds.HighConfidence)
	}
	if cfg.MaxConcurrency != 5 {
		t.Errorf("expected default max_concurrency 5, got %d", cfg.MaxConcurrency)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.repeal.yml")

	original := DefaultConfig()
	original.EmbeddingProvider = ProviderOllama
	original.EmbeddingModel = "nomic-embed-text"
	original.EmbeddingDimensions = 768
	original.Index = IndexChromem
	original.Include = []string{"specs/**/*.pdf", "notes/*.txt"}
	original.DataDir = "corpusdata"
	original.Thresholds.MinSimilarity = 0.35
	original.Thresholds.HighConfidence = 0.75

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.EmbeddingProvider != original.EmbeddingProvider {
		t.Errorf("embedding_provider: got %q, want %q", loaded.EmbeddingProvider, original.EmbeddingProvider)
	}
	if loaded.EmbeddingModel != original.EmbeddingModel {
		t.Errorf("embedding_model: got %q, want %q", loaded.EmbeddingModel, original.EmbeddingModel)
	}
	if loaded.Index != original.Index {
		t.Errorf("index: got %q, want %q", loaded.Index, original.Index)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.Thresholds.MinSimilarity != original.Thresholds.MinSimilarity {
		t.Errorf("min_similarity: got %v, want %v", loaded.Thresholds.MinSimilarity, original.Thresholds.MinSimilarity)
	}
	if loaded.Thresholds.HighConfidence != original.Thresholds.HighConfidence {
		t.Errorf("high_confidence: got %v, want %v", loaded.Thresholds.HighConfidence, original.Thresholds.HighConfidence)
	}
	if len(loaded.Include) != len(original.Include) {
		t.Fatalf("include length: got %d, want %d", len(loaded.Include), len(original.Include))
	}
	for i, v := range loaded.Include {
		if v != original.Include[i] {
			t.Errorf("include[%d]: got %q, want %q", i, v, original.Include[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.EmbeddingProvider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.EmbeddingProvider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("REPEAL_EMBEDDING_PROVIDER", "ollama")
	defer os.Unsetenv("REPEAL_EMBEDDING_PROVIDER")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.EmbeddingProvider != ProviderOllama {
		t.Errorf("env override failed: got %q, want %q", loaded.EmbeddingProvider, ProviderOllama)
	}
}

func TestLoadNestedEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("REPEAL_THRESHOLDS__HIGH_CONFIDENCE", "0.9")
	defer os.Unsetenv("REPEAL_THRESHOLDS__HIGH_CONFIDENCE")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Thresholds.HighConfidence != 0.9 {
		t.Errorf("nested env override failed: got %v, want 0.9", loaded.Thresholds.HighConfidence)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmbeddingProvider = "anthropic"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestValidateEmptyProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmbeddingProvider = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty provider")
	}
}

func TestValidateEmptyModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmbeddingModel = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty model")
	}
}

func TestValidateInvalidIndex(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index = "faiss"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid index")
	}
}

func TestValidateEmptyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty data_dir")
	}
}

func TestValidateThresholdBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.MinSimilarity = 1.2
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for min_similarity > 1")
	}

	cfg = DefaultConfig()
	cfg.Thresholds.MediumConfidence = 0.8
	cfg.Thresholds.HighConfidence = 0.6
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for medium > high")
	}

	cfg = DefaultConfig()
	cfg.Thresholds.MatchMin = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for match_min < 1")
	}
}

func TestValidateNegativeConcurrency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrency = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative max_concurrency")
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderOllama)
	if p.Model != "nomic-embed-text" || p.Dimensions != 768 {
		t.Errorf("ollama preset = %+v", p)
	}

	// Unknown provider falls back.
	p = GetPreset("unknown")
	if p.Model != "text-embedding-3-small" {
		t.Errorf("expected fallback to openai preset, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.pdf", []string{"**/*.pdf"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
