package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if CADENCE_CONFIG is set
//  3. env (prefix CADENCE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CADENCE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: CADENCE_LEDGER_PATH, CADENCE_GRANULARITY, ...
	// Map env keys like CADENCE_LEDGER_PATH -> ledger_path (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("CADENCE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "cadence_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.LedgerFormat {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("%w: ledger_format %q (want csv or sqlite)", ErrInvalidConfig, c.LedgerFormat)
	}
	switch c.Granularity {
	case "day", "week", "month":
	default:
		return fmt.Errorf("%w: granularity %q (want day, week or month)", ErrInvalidConfig, c.Granularity)
	}
	switch c.AmountPolicy {
	case "sum", "first":
	default:
		return fmt.Errorf("%w: amount_policy %q (want sum or first)", ErrInvalidConfig, c.AmountPolicy)
	}
	if c.LedgerPath == "" {
		return fmt.Errorf("%w: ledger_path must not be empty", ErrInvalidConfig)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.ActiveRecencyMaxDays < 0 {
		return fmt.Errorf("%w: active_recency_max_days must not be negative", ErrInvalidConfig)
	}
	return nil
}
