package config

import "fmt"

// Validator runs structural checks over a loaded Config that yaml
// unmarshaling alone can't express — cross-references and the
// required-field checks the teacher's pkg/config.Validator runs as a
// dedicated pass after load rather than folding into struct tags.
type Validator struct {
	cfg *Config
}

// NewValidator wraps a loaded Config for validation.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll runs every check, returning the first failure.
func (v *Validator) ValidateAll() error {
	if err := v.validateRegions(); err != nil {
		return err
	}
	if err := v.validateLLMProviders(); err != nil {
		return err
	}
	if err := v.validateBudget(); err != nil {
		return err
	}
	return nil
}

func (v *Validator) validateRegions() error {
	for slug, r := range v.cfg.Regions.GetAll() {
		if r.Name == "" {
			return NewValidationError("region", slug, "name", fmt.Errorf("must not be empty"))
		}
		if len(r.SeedURLs) == 0 && len(r.SeedQueries) == 0 && len(r.FeedURLs) == 0 {
			return NewValidationError("region", slug, "seed_urls/seed_queries/feed_urls",
				fmt.Errorf("at least one cold-start source is required to bootstrap a region"))
		}
		for i, seed := range r.ActorSeeds {
			if seed.URL == "" {
				return NewValidationError("region", slug, fmt.Sprintf("actor_seeds[%d].url", i), fmt.Errorf("must not be empty"))
			}
		}
	}
	return nil
}

func (v *Validator) validateLLMProviders() error {
	for name, p := range v.cfg.LLMProviders.GetAll() {
		if p.Addr == "" {
			return NewValidationError("llm_provider", name, "addr", fmt.Errorf("must not be empty"))
		}
	}
	return nil
}

func (v *Validator) validateBudget() error {
	b := v.cfg.Budget
	if b.DailyLimitCents <= 0 {
		return NewValidationError("budget", "global", "daily_limit_cents", fmt.Errorf("must be positive"))
	}
	if b.PerRunLimitCents <= 0 {
		return NewValidationError("budget", "global", "per_run_limit_cents", fmt.Errorf("must be positive"))
	}
	if b.PerRunLimitCents > b.DailyLimitCents {
		return NewValidationError("budget", "global", "per_run_limit_cents", fmt.Errorf("must not exceed daily_limit_cents"))
	}
	return nil
}
