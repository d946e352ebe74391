// Package normalize collapses raw ledger rows into the per-account per-day
// transaction set the analysis pipeline operates on.
//
// The ledger may record several donations by the same account on the same
// calendar day. The pipeline counts one engagement per donor per day, so
// those rows collapse to a single Transaction. What happens to the extra
// amounts is a policy choice, see AmountPolicy.
package normalize

import (
	"context"
	"fmt"
	"sort"

	"github.com/donorlab/cadence/internal/domain/model"
	"github.com/donorlab/cadence/pkg/metrics"
)

// AmountPolicy selects how amounts of collapsed same-day duplicates combine.
type AmountPolicy string

const (
	// AmountSum sums the duplicate amounts while still counting the day once.
	// This keeps the money-conservation invariant against the raw ledger.
	AmountSum AmountPolicy = "sum"

	// AmountFirst keeps the first-seen amount and discards the rest,
	// reproducing the historical behavior of the original reports.
	AmountFirst AmountPolicy = "first"
)

// Valid reports whether p is a known policy.
func (p AmountPolicy) Valid() bool {
	return p == AmountSum || p == AmountFirst
}

// Stats reports what normalization did to the input.
type Stats struct {
	RowsIn    int
	RowsOut   int
	Collapsed int // duplicate (account, day) rows folded away
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithAmountPolicy sets the duplicate-amount policy.
func WithAmountPolicy(p AmountPolicy) Option {
	return func(n *Normalizer) {
		if p.Valid() {
			n.policy = p
		}
	}
}

// Normalizer deduplicates ledger rows per (account, day).
type Normalizer struct {
	policy AmountPolicy
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		policy: AmountSum, // default policy
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// dayKey identifies one account on one calendar day.
type dayKey struct {
	account string
	day     int64 // unix seconds of midnight UTC
}

// Normalize collapses txns to at most one row per (account, day) and returns
// them sorted by (date, account) so downstream output is deterministic
// regardless of ledger row order.
//
// A zero date is a loud failure: the aggregator's bucket-span computation is
// undefined without one, and a zero date reaching this boundary means the
// gateway misparsed the ledger.
func (n *Normalizer) Normalize(ctx context.Context, txns []model.Transaction) ([]model.Transaction, Stats, error) {
	stats := Stats{RowsIn: len(txns)}

	seen := make(map[dayKey]int, len(txns))
	out := make([]model.Transaction, 0, len(txns))
	for i, t := range txns {
		if t.Date.IsZero() {
			return nil, Stats{}, fmt.Errorf("row %d (account %q): %w", i, t.AccountID, ErrZeroDate)
		}
		day := model.Day(t.Date)
		key := dayKey{account: t.AccountID, day: day.Unix()}
		if j, ok := seen[key]; ok {
			stats.Collapsed++
			if n.policy == AmountSum {
				out[j].Amount = out[j].Amount.Add(t.Amount)
			}
			continue
		}
		t.Date = day
		seen[key] = len(out)
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].AccountID < out[j].AccountID
	})

	stats.RowsOut = len(out)
	metrics.AddTransactionsNormalized(stats.RowsOut)
	metrics.AddDuplicatesCollapsed(stats.Collapsed)
	return out, stats, nil
}
