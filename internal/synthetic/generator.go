// Package synthetic generates donation ledgers with known cadences so the
// estimator's output can be validated against ground truth.
package synthetic

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/donorlab/cadence/internal/domain/model"
)

// Cadence patterns assignable to generated accounts.
const (
	PatternMonthly   = "monthly"   // every 30 days
	PatternWeekly    = "weekly"    // every 7 days
	PatternBiweekly  = "biweekly"  // every 14 days
	PatternIrregular = "irregular" // random gaps, no dominant period
	PatternOneOff    = "oneoff"    // 1-2 donations, below estimator preconditions
)

// patternCycle maps regular patterns to their gap in days.
var patternCycle = map[string]int{
	PatternMonthly:  30,
	PatternWeekly:   7,
	PatternBiweekly: 14,
}

// Default generation parameters.
const (
	defaultAccounts = 100
	defaultSpanDays = 365
	maxAmountCents  = 50000
	minAmountCents  = 500
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithAccounts sets how many accounts to generate.
func WithAccounts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.accounts = n
		}
	}
}

// WithSpanDays sets the calendar span of the generated ledger.
func WithSpanDays(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.spanDays = n
		}
	}
}

// WithSeed fixes the random seed so generated ledgers are reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic ledgers, not cryptography
	}
}

// WithStart sets the first calendar day of the ledger.
func WithStart(t time.Time) Option {
	return func(g *Generator) {
		g.start = model.Day(t)
	}
}

// Generator emits synthetic donation ledgers.
type Generator struct {
	accounts int
	spanDays int
	start    time.Time
	rng      *rand.Rand
}

// New creates a Generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		accounts: defaultAccounts,
		spanDays: defaultSpanDays,
		start:    model.Day(time.Now().UTC().AddDate(-1, 0, 0)),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // synthetic data
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Account is one generated donor with its ground-truth pattern.
type Account struct {
	ID      string
	Pattern string
	Kind    string
	Groups  string
	Txns    []model.Transaction
}

// Generate produces the configured number of accounts, cycling through the
// cadence patterns so every pattern is represented.
func (g *Generator) Generate() []Account {
	patterns := []string{PatternMonthly, PatternWeekly, PatternBiweekly, PatternIrregular, PatternOneOff}

	accounts := make([]Account, 0, g.accounts)
	for i := 0; i < g.accounts; i++ {
		pattern := patterns[i%len(patterns)]
		acct := Account{
			ID:      uuid.NewString(),
			Pattern: pattern,
			Kind:    "Individual",
		}
		// Roughly one account in five is an organization; monthly-pattern
		// accounts carry the CRM group used by the MonthlyDonors subgroup.
		if g.rng.Intn(5) == 0 {
			acct.Kind = "Organization"
		}
		if pattern == PatternMonthly {
			acct.Groups = "Monthly Donors"
		}
		acct.Txns = g.history(acct, pattern)
		accounts = append(accounts, acct)
	}
	return accounts
}

// history generates one account's donation dates and amounts.
func (g *Generator) history(acct Account, pattern string) []model.Transaction {
	var offsets []int
	switch pattern {
	case PatternOneOff:
		offsets = []int{g.rng.Intn(g.spanDays)}
		if g.rng.Intn(2) == 0 {
			offsets = append(offsets, offsets[0]+1)
		}
	case PatternIrregular:
		day := g.rng.Intn(20)
		for day < g.spanDays {
			offsets = append(offsets, day)
			day += 3 + g.rng.Intn(50)
		}
	default:
		cycle := patternCycle[pattern]
		for day := g.rng.Intn(cycle); day < g.spanDays; day += cycle {
			offsets = append(offsets, day)
		}
	}

	txns := make([]model.Transaction, 0, len(offsets))
	for _, off := range offsets {
		cents := minAmountCents + int64(g.rng.Intn(maxAmountCents-minAmountCents))
		txns = append(txns, model.Transaction{
			AccountID: acct.ID,
			Date:      g.start.AddDate(0, 0, off),
			Amount:    model.Money{Cents: cents},
			Kind:      acct.Kind,
			Groups:    acct.Groups,
		})
	}
	return txns
}

// WriteCSV writes accounts as a ledger CSV in the gateway's expected format.
func WriteCSV(w io.Writer, accounts []Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"account_id", "date", "amount", "type", "groups"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, acct := range accounts {
		for _, t := range acct.Txns {
			row := []string{
				t.AccountID,
				t.Date.Format("2006-01-02"),
				strconv.FormatFloat(t.Amount.Units(), 'f', 2, 64),
				t.Kind,
				t.Groups,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
