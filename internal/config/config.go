// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and CADENCE_-prefixed env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LedgerPath points at the transaction export to analyze.
	LedgerPath string `koanf:"ledger_path"`

	// LedgerFormat selects the gateway: csv or sqlite.
	LedgerFormat string `koanf:"ledger_format"`

	// Granularity of the report series printed by the CLI: day, week, month.
	// The per-subgroup analysis always runs on the daily series.
	Granularity string `koanf:"granularity"`

	// AmountPolicy selects duplicate same-day amount handling: sum or first.
	// "first" reproduces historical report output; "sum" conserves money.
	AmountPolicy string `koanf:"amount_policy"`

	// Concurrency bounds parallel subgroup and per-account work.
	Concurrency int `koanf:"concurrency"`

	// ActiveRecencyMaxDays is the recency window marking accounts active.
	ActiveRecencyMaxDays int `koanf:"active_recency_max_days"`

	// MetricsAddr enables the Prometheus /metrics listener when non-empty,
	// e.g. ":9091". Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LedgerPath:           "./data/transactions.csv",
		LedgerFormat:         "csv",
		Granularity:          "day",
		AmountPolicy:         "sum",
		Concurrency:          runtime.NumCPU(),
		ActiveRecencyMaxDays: 90,
		MetricsAddr:          "",
	}
}
