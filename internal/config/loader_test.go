package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMain = `
regions:
  portland:
    name: "Portland, Oregon"
    seed_urls:
      - "https://example.org/portland-news"
    bootstrap_budget_cents: 200
fetchers:
  generic_web:
    platform: generic_web
    requests_per_minute: 30
    timeout_seconds: 15
budget:
  daily_limit_cents: 5000
  per_run_limit_cents: 500
`

const validProviders = `
llm_providers:
  extractor:
    addr: "${LLM_ADDR}"
    model: "haiku"
    max_tool_result_tokens: 8000
`

func writeConfigDir(t *testing.T, main, providers string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rootsignal.yaml"), []byte(main), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "llm-providers.yaml"), []byte(providers), 0o600))
	return dir
}

func TestInitialize_LoadsRegionsFetchersAndProviders(t *testing.T) {
	t.Setenv("LLM_ADDR", "llm.internal:9443")
	dir := writeConfigDir(t, validMain, validProviders)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	region, err := cfg.GetRegion("portland")
	require.NoError(t, err)
	assert.Equal(t, "Portland, Oregon", region.Name)
	assert.Equal(t, int64(200), region.BootstrapBudgetCents)

	fetcher, err := cfg.GetFetcher("generic_web")
	require.NoError(t, err)
	assert.Equal(t, 30, fetcher.RequestsPerMinute)

	provider, err := cfg.GetLLMProvider("extractor")
	require.NoError(t, err)
	assert.Equal(t, "llm.internal:9443", provider.Addr, "env var must be expanded before YAML parsing")

	assert.Equal(t, int64(5000), cfg.Budget.DailyLimitCents)
}

func TestInitialize_MissingFileReturnsLoadError(t *testing.T) {
	dir := t.TempDir()
	_, err := Initialize(context.Background(), dir)
	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestInitialize_RegionWithNoSeedsFailsValidation(t *testing.T) {
	t.Setenv("LLM_ADDR", "llm.internal:9443")
	dir := writeConfigDir(t, `
regions:
  empty_region:
    name: "Nowhere"
`, validProviders)

	_, err := Initialize(context.Background(), dir)
	require.Error(t, err)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestInitialize_MissingBudgetAppliesDefault(t *testing.T) {
	t.Setenv("LLM_ADDR", "llm.internal:9443")
	dir := writeConfigDir(t, `
regions:
  portland:
    name: "Portland, Oregon"
    seed_urls: ["https://example.org/portland-news"]
`, validProviders)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultBudgetConfig(), cfg.Budget)
}
