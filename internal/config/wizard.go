package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .repeal.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to repeal! Let's configure your project.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{
			"openai — text-embedding-3-small (API key required)",
			"ollama — nomic-embed-text (local, no key)",
		},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	providers := []ProviderType{ProviderOpenAI, ProviderOllama}
	cfg.EmbeddingProvider = providers[providerIdx]

	preset := GetPreset(cfg.EmbeddingProvider)
	cfg.EmbeddingModel = preset.Model
	cfg.EmbeddingDimensions = preset.Dimensions

	// 2. Spec document directory patterns.
	includePrompt := promptui.Prompt{
		Label:   "Spec document patterns (comma-separated globs)",
		Default: strings.Join(DefaultIncludes, ","),
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	cfg.Include = splitAndTrim(includeStr)

	// 3. High-confidence threshold.
	highPrompt := promptui.Prompt{
		Label:   "High-confidence threshold (repealable at or above)",
		Default: strconv.FormatFloat(cfg.Thresholds.HighConfidence, 'f', 2, 64),
		Validate: func(s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v < 0 || v > 1 {
				return fmt.Errorf("enter a number between 0 and 1")
			}
			return nil
		},
	}
	highStr, err := highPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("high confidence threshold: %w", err)
	}
	cfg.Thresholds.HighConfidence, _ = strconv.ParseFloat(highStr, 64)

	// 4. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory for the corpus and history database",
		Default: cfg.DataDir,
	}
	cfg.DataDir, err = dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// Check for API key.
	envVar := APIKeyEnvVar(cfg.EmbeddingProvider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running repeal ingest.\n", envVar)
	}

	// Save to .repeal.yml.
	configPath := ".repeal.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
