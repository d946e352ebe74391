// Package app provides the analysis service that orchestrates aggregation,
// periodicity estimation, and profiling across donor subgroups.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/donorlab/cadence/internal/domain/aggregate"
	"github.com/donorlab/cadence/internal/domain/model"
	"github.com/donorlab/cadence/internal/domain/profile"
	"github.com/donorlab/cadence/internal/domain/spectral"
	"github.com/donorlab/cadence/pkg/logger"
	"github.com/donorlab/cadence/pkg/metrics"
)

// Analyzer runs the full donation-cadence analysis once per subgroup.
// Subgroups are independent: each works on its own filtered copy of the
// input and no state is shared between them, so they may run concurrently.
// Output ordering is fixed by the declared subgroup order and by sorted
// account IDs, never by completion order.
type Analyzer struct {
	subgroups        []model.Subgroup
	concurrency      int
	activeRecencyMax int
	progress         func(done, total int)
	logger           logger.Logger
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithSubgroups replaces the built-in subgroup definitions.
func WithSubgroups(subgroups []model.Subgroup) Option {
	return func(a *Analyzer) {
		if len(subgroups) > 0 {
			a.subgroups = subgroups
		}
	}
}

// WithConcurrency bounds parallel subgroup and per-account work.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithActiveRecencyMax sets the recency window, in days, marking an account
// as still active in its profile.
func WithActiveRecencyMax(days int) Option {
	return func(a *Analyzer) {
		if days >= 0 {
			a.activeRecencyMax = days
		}
	}
}

// WithProgress installs a callback invoked after each account's estimation,
// with the number of accounts done and the total across all subgroups.
func WithProgress(fn func(done, total int)) Option {
	return func(a *Analyzer) {
		a.progress = fn
	}
}

// WithLogger sets a custom logger for the analyzer.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New constructs an Analyzer with default configuration.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		subgroups:        BuiltinSubgroups(),
		concurrency:      runtime.NumCPU(),
		activeRecencyMax: profile.DefaultActiveRecencyMax,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("analyzer")
	}
	return a
}

// Run analyzes txns once per configured subgroup and returns results keyed
// by subgroup name together with the names present, in declared order.
// Subgroups with no matching transactions are absent from both.
//
// txns must already be normalized (one row per account per day); Run assumes
// that invariant and does not re-collapse duplicates.
func (a *Analyzer) Run(ctx context.Context, txns []model.Transaction) (map[string]*model.RunResult, []string, error) {
	start := time.Now()
	runID := uuid.NewString()
	a.logger.Info(ctx, "starting analysis run",
		logger.String("run_id", runID),
		logger.Int("transactions", len(txns)),
		logger.Int("subgroups", len(a.subgroups)))

	// Pre-filter serially so the progress total is known before workers start.
	filtered := make([][]model.Transaction, len(a.subgroups))
	totalAccounts := 0
	for i, sg := range a.subgroups {
		for _, t := range txns {
			if sg.Member(t) {
				filtered[i] = append(filtered[i], t)
			}
		}
		totalAccounts += countAccounts(filtered[i])
	}

	tracker := newProgressTracker(totalAccounts, a.progress)

	results := make([]*model.RunResult, len(a.subgroups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range a.subgroups {
		g.Go(func() error {
			if len(filtered[i]) == 0 {
				metrics.IncSubgroupsSkipped()
				a.logger.Debug(gctx, "skipping empty subgroup",
					logger.String("run_id", runID),
					logger.String("subgroup", a.subgroups[i].Name))
				return nil
			}
			r, err := a.analyzeSubgroup(gctx, runID, a.subgroups[i].Name, filtered[i], tracker)
			if err != nil {
				return fmt.Errorf("subgroup %q: %w", a.subgroups[i].Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make(map[string]*model.RunResult, len(a.subgroups))
	var names []string
	for i, r := range results {
		if r == nil {
			continue
		}
		out[a.subgroups[i].Name] = r
		names = append(names, a.subgroups[i].Name)
	}

	metrics.ObserveRunDuration(time.Since(start))
	a.logger.Info(ctx, "analysis run complete",
		logger.String("run_id", runID),
		logger.Int("subgroups_present", len(names)),
		logger.Duration("elapsed", time.Since(start)))
	return out, names, nil
}

// analyzeSubgroup computes the daily series, calendar summaries, and
// per-account periodicity and profile for one subgroup's transactions.
func (a *Analyzer) analyzeSubgroup(ctx context.Context, runID, name string, txns []model.Transaction, tracker *progressTracker) (*model.RunResult, error) {
	daily, err := aggregate.Aggregate(txns, aggregate.Day)
	if err != nil {
		return nil, err
	}
	metrics.AddSeriesBuckets(len(daily))

	byAccount := make(map[string][]model.Transaction)
	for _, t := range txns {
		byAccount[t.AccountID] = append(byAccount[t.AccountID], t)
	}
	accounts := make([]string, 0, len(byAccount))
	for id := range byAccount {
		accounts = append(accounts, id)
	}
	sort.Strings(accounts)

	// Observation date for recency/tenure is the subgroup's last activity.
	asOf := daily[len(daily)-1].BucketStart

	// Per-account slots are pre-sized and indexed so concurrent estimation
	// cannot perturb output order.
	periods := make([]*model.PeriodicityResult, len(accounts))
	profiles := make([]model.AccountProfile, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, id := range accounts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			history := byAccount[id]
			estStart := time.Now()

			dates := make([]time.Time, len(history))
			for j, t := range history {
				dates[j] = t.Date
			}
			if period, ok := spectral.EstimateDominantPeriod(dates); ok {
				periods[i] = &model.PeriodicityResult{AccountID: id, PeriodDays: period}
				metrics.IncAccountsEstimated()
			} else {
				metrics.IncEstimatorSkips()
			}
			metrics.ObserveEstimationLatency(time.Since(estStart))

			if p, ok := profile.Build(history, asOf, a.activeRecencyMax); ok {
				profiles[i] = p
			}
			tracker.step()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	periodicity := make([]model.PeriodicityResult, 0, len(accounts))
	for _, p := range periods {
		if p != nil {
			periodicity = append(periodicity, *p)
		}
	}

	metrics.IncSubgroupRuns()
	a.logger.Debug(ctx, "subgroup analyzed",
		logger.String("run_id", runID),
		logger.String("subgroup", name),
		logger.Int("accounts", len(accounts)),
		logger.Int("estimated", len(periodicity)),
		logger.Int("buckets", len(daily)))

	return &model.RunResult{
		RunID:       runID,
		Subgroup:    name,
		Daily:       daily,
		Periodicity: periodicity,
		Profiles:    profiles,
		WeekdayMean: aggregate.MeanByWeekday(daily),
		MonthMean:   aggregate.MeanByMonthOfYear(daily),
	}, nil
}

func countAccounts(txns []model.Transaction) int {
	seen := make(map[string]struct{}, len(txns))
	for _, t := range txns {
		seen[t.AccountID] = struct{}{}
	}
	return len(seen)
}
