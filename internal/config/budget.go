package config

// BudgetConfig is the steady-state cents budget FullRun propagates as
// spent_cents between sub-workflows (spec §4.4.1). It holds no per-call
// cost: Scrape charges internal/scout.BudgetTracker the flat
// extractionCostCents constant defined in internal/scout.
type BudgetConfig struct {
	// DailyLimitCents bounds total spend across every FullRun for a
	// region in a rolling day — spec §7's "Budget exhaustion: Daily
	// spend cap hit" edge case.
	DailyLimitCents int64 `yaml:"daily_limit_cents" validate:"required,min=1"`

	// PerRunLimitCents caps a single FullRun invocation, independent of
	// how much of the daily budget remains.
	PerRunLimitCents int64 `yaml:"per_run_limit_cents" validate:"required,min=1"`
}

// DefaultBudgetConfig is used when an operator configures a region
// without an explicit budget override.
func DefaultBudgetConfig() *BudgetConfig {
	return &BudgetConfig{
		DailyLimitCents:  5000,
		PerRunLimitCents: 1000,
	}
}
