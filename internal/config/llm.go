package config

import (
	"fmt"
	"sync"
)

// LLMProviderConfig points at one llmclient.GRPCClient target — the
// out-of-scope LLM provider boundary spec §6.1 describes as reached
// "over a service boundary". Adapted from the teacher's
// pkg/config.LLMProviderConfig, trimmed to what internal/llmclient's
// single gRPC transport actually needs instead of the teacher's
// per-vendor (VertexAI/Google-native-tools) field set, since every
// provider here is reached through the same proto contract.
type LLMProviderConfig struct {
	// Addr is the gRPC target internal/llmclient.NewGRPCClient dials,
	// e.g. "llm-service.internal:9443".
	Addr string `yaml:"addr" validate:"required"`

	// Model names the concrete model the remote service routes this
	// provider's calls to. It is one name for every capability the
	// provider backs.
	Model string `yaml:"model,omitempty"`

	// MaxToolResultTokens bounds how much archived page content a
	// single extract/lint call sends, mirroring the teacher's own
	// per-provider token ceiling.
	MaxToolResultTokens int `yaml:"max_tool_result_tokens,omitempty" validate:"omitempty,min=1000"`

	// CostPerCallCents is a per-call cost for this provider. No code reads
	// it: Scrape charges BudgetTracker the flat extractionCostCents
	// constant in internal/scout for every extraction call.
	CostPerCallCents int64 `yaml:"cost_per_call_cents,omitempty"`
}

// LLMProviderRegistry stores LLM provider configs in memory, thread-safe.
type LLMProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]*LLMProviderConfig
}

// NewLLMProviderRegistry builds a registry, defensively copying the input.
func NewLLMProviderRegistry(providers map[string]*LLMProviderConfig) *LLMProviderRegistry {
	copied := make(map[string]*LLMProviderConfig, len(providers))
	for k, v := range providers {
		copied[k] = v
	}
	return &LLMProviderRegistry{providers: copied}
}

// Get retrieves a provider config by name.
func (r *LLMProviderRegistry) Get(name string) (*LLMProviderConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLLMProviderNotFound, name)
	}
	return p, nil
}

// GetAll returns every registered provider config.
func (r *LLMProviderRegistry) GetAll() map[string]*LLMProviderConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*LLMProviderConfig, len(r.providers))
	for k, v := range r.providers {
		out[k] = v
	}
	return out
}

// Len returns the number of registered providers.
func (r *LLMProviderRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
