package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/donorlab/cadence/internal/adapters/ledger"
	"github.com/donorlab/cadence/internal/app"
	"github.com/donorlab/cadence/internal/config"
	"github.com/donorlab/cadence/internal/domain/aggregate"
	"github.com/donorlab/cadence/internal/domain/model"
	"github.com/donorlab/cadence/internal/domain/normalize"
	"github.com/donorlab/cadence/internal/domain/spectral"
	"github.com/donorlab/cadence/pkg/logger"
	"github.com/donorlab/cadence/pkg/metrics"
)

// HTTP timeouts for the optional metrics listener.
const (
	metricsReadTimeout       = 5 * time.Second
	metricsReadHeaderTimeout = 5 * time.Second
)

// loader abstracts the ledger gateways.
type loader interface {
	Load(ctx context.Context, path string) ([]model.Transaction, error)
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional Prometheus listener; a batch run exits quickly, but long
	// ingests over large ledgers are scrapeable while they run.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	var src loader
	switch cfg.LedgerFormat {
	case "sqlite":
		src = ledger.NewSQLiteReader()
	default:
		src = ledger.NewCSVReader()
	}

	raw, err := src.Load(ctx, cfg.LedgerPath)
	if err != nil {
		return err
	}
	log.Info(ctx, "ledger loaded",
		logger.String("path", cfg.LedgerPath),
		logger.Int("rows", len(raw)))

	normalizer := normalize.New(normalize.WithAmountPolicy(normalize.AmountPolicy(cfg.AmountPolicy)))
	txns, stats, err := normalizer.Normalize(ctx, raw)
	if err != nil {
		return err
	}
	log.Info(ctx, "ledger normalized",
		logger.Int("rows_in", stats.RowsIn),
		logger.Int("rows_out", stats.RowsOut),
		logger.Int("collapsed", stats.Collapsed))
	metrics.SetAccountsTracked(countAccounts(txns))

	analyzer := app.New(
		app.WithLogger(log.Named("analyzer")),
		app.WithConcurrency(cfg.Concurrency),
		app.WithActiveRecencyMax(cfg.ActiveRecencyMaxDays),
		app.WithProgress(progressFunc()),
	)
	results, names, err := analyzer.Run(ctx, txns)
	if err != nil {
		return err
	}

	return render(os.Stdout, cfg, results, names)
}

// progressFunc bridges the analyzer's progress callback onto a terminal
// progress bar, created lazily once the account total is known.
func progressFunc() func(done, total int) {
	var once sync.Once
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		once.Do(func() {
			bar = progressbar.Default(int64(total), "estimating")
		})
		_ = bar.Set(done)
	}
}

// render prints the run results as plain tables, one block per subgroup in
// declared order.
func render(w *os.File, cfg *config.Config, results map[string]*model.RunResult, names []string) error {
	granularity := aggregate.Granularity(cfg.Granularity)

	for _, name := range names {
		r := results[name]
		series, err := aggregate.Rebucket(r.Daily, granularity)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\n=== %s ===\n", name)
		span := ""
		if len(series) > 0 {
			span = fmt.Sprintf("%s .. %s", series[0].BucketStart.Format("2006-01-02"),
				series[len(series)-1].BucketStart.Format("2006-01-02"))
		}
		fmt.Fprintf(w, "buckets=%d (%s) span=%s total=%.2f donations=%d accounts=%d estimated=%d\n",
			len(series), granularity, span, series.Total().Units(), donationCount(series),
			len(r.Profiles), len(r.Periodicity))

		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "weekday\tmean amount\tmean donations")
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if m, ok := r.WeekdayMean[wd]; ok {
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\n", wd, m.Amount, m.Count)
			}
		}
		fmt.Fprintln(tw, "\nmonth\tmean amount\tmean donations")
		for m := time.January; m <= time.December; m++ {
			if v, ok := r.MonthMean[m]; ok {
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\n", m, v.Amount, v.Count)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		printPeriodicity(w, r.Periodicity)
		printActivity(w, r.Profiles)
	}
	return nil
}

// printPeriodicity summarizes the cadence distribution instead of dumping
// every account: the per-account table belongs to downstream presentation.
func printPeriodicity(w *os.File, results []model.PeriodicityResult) {
	if len(results) == 0 {
		return
	}
	periods := make([]float64, len(results))
	for i, r := range results {
		periods[i] = r.PeriodDays
	}
	sort.Float64s(periods)
	median := periods[len(periods)/2]
	fmt.Fprintf(w, "\ndominant period (days): min=%.2f median=%.2f max=%.2f n=%d\n",
		periods[0], median, periods[len(periods)-1], len(periods))
	fmt.Fprintf(w, "median cadence: %.4f donations/day\n", spectral.PeriodFrequency(median))
}

func printActivity(w *os.File, profiles []model.AccountProfile) {
	active := 0
	for _, p := range profiles {
		if p.Active {
			active++
		}
	}
	fmt.Fprintf(w, "active accounts: %d of %d\n", active, len(profiles))
}

func donationCount(series model.BucketedSeries) int {
	total := 0
	for _, p := range series {
		total += p.DonationCount
	}
	return total
}

func countAccounts(txns []model.Transaction) int {
	seen := make(map[string]struct{}, len(txns))
	for _, t := range txns {
		seen[t.AccountID] = struct{}{}
	}
	return len(seen)
}

func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       metricsReadTimeout,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics listener failed", logger.Error(err))
	}
}
