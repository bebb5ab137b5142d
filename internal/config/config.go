package config

// Config is the umbrella object Initialize returns: every per-concern
// registry cmd/rootsignal wires into the scout/archive/llmclient
// constructors, the same "one struct of registries" shape as the
// teacher's pkg/config.Config.
type Config struct {
	configDir string

	Regions      *RegionRegistry
	LLMProviders *LLMProviderRegistry
	Fetchers     *FetcherRegistry
	Budget       *BudgetConfig
}

// ConfigDir returns the directory configuration was loaded from.
func (c *Config) ConfigDir() string { return c.configDir }

// Stats summarizes what loaded, for a one-line startup log.
type Stats struct {
	Regions      int
	LLMProviders int
	Fetchers     int
}

// Stats returns a snapshot of registry sizes.
func (c *Config) Stats() Stats {
	return Stats{
		Regions:      c.Regions.Len(),
		LLMProviders: c.LLMProviders.Len(),
		Fetchers:     len(c.Fetchers.GetAll()),
	}
}

// GetRegion is a convenience wrapper around RegionRegistry.Get.
func (c *Config) GetRegion(slug string) (*RegionConfig, error) {
	return c.Regions.Get(slug)
}

// GetLLMProvider is a convenience wrapper around LLMProviderRegistry.Get.
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviders.Get(name)
}

// GetFetcher is a convenience wrapper around FetcherRegistry.Get.
func (c *Config) GetFetcher(platform string) (*FetcherConfig, error) {
	return c.Fetchers.Get(platform)
}
