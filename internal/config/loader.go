package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// rootsignalYAMLConfig is the top-level shape of rootsignal.yaml:
// regions, fetcher profiles, and the budget — everything but LLM
// providers, which get their own file the same way the teacher splits
// llm-providers.yaml out of tarsy.yaml.
type rootsignalYAMLConfig struct {
	Regions  map[string]RegionConfig  `yaml:"regions"`
	Fetchers map[string]FetcherConfig `yaml:"fetchers"`
	Budget   *BudgetConfig            `yaml:"budget"`
}

// llmProvidersYAMLConfig is llm-providers.yaml's shape, split from the
// main file so LLM endpoints/credentials can be managed and rotated
// independently of region/fetcher config, as the teacher's own
// llm-providers.yaml does for its provider set.
type llmProvidersYAMLConfig struct {
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration
// from configDir/rootsignal.yaml and configDir/llm-providers.yaml.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		"regions", stats.Regions,
		"llm_providers", stats.LLMProviders,
		"fetchers", stats.Fetchers)
	return cfg, nil
}

func load(configDir string) (*Config, error) {
	var main rootsignalYAMLConfig
	if err := loadYAML(configDir, "rootsignal.yaml", &main); err != nil {
		return nil, NewLoadError("rootsignal.yaml", err)
	}

	var llmFile llmProvidersYAMLConfig
	if err := loadYAML(configDir, "llm-providers.yaml", &llmFile); err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	regions := make(map[string]*RegionConfig, len(main.Regions))
	for slug, r := range main.Regions {
		r := r
		if r.Slug == "" {
			r.Slug = slug
		}
		regions[slug] = &r
	}

	fetchers := make(map[string]*FetcherConfig, len(main.Fetchers))
	for platform, f := range main.Fetchers {
		f := f
		if f.Platform == "" {
			f.Platform = platform
		}
		fetchers[platform] = &f
	}

	providers := make(map[string]*LLMProviderConfig, len(llmFile.LLMProviders))
	for name, p := range llmFile.LLMProviders {
		p := p
		providers[name] = &p
	}

	budget := main.Budget
	if budget == nil {
		budget = DefaultBudgetConfig()
	}

	return &Config{
		configDir:    configDir,
		Regions:      NewRegionRegistry(regions),
		LLMProviders: NewLLMProviderRegistry(providers),
		Fetchers:     NewFetcherRegistry(fetchers),
		Budget:       budget,
	}, nil
}

// loadYAML reads filename from dir, expands env vars, and unmarshals
// into target. A missing file is an error — callers decide how to
// treat ErrConfigNotFound (e.g. rootsignal.yaml for a brand-new deployment
// that hasn't onboarded any region yet).
func loadYAML(dir, filename string, target any) error {
	path := filepath.Join(dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}
	data = ExpandEnv(data)
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}
	return nil
}
