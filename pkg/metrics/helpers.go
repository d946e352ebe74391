package metrics

import "time"

// Package-level helpers record against the global manager so call sites stay
// one-liners. All of them are no-ops when metrics are disabled.

// AddTransactionsLoaded records raw ledger rows loaded.
func AddTransactionsLoaded(n int) {
	if globalManager.enabled {
		globalManager.transactionsLoaded.Add(float64(n))
	}
}

// AddTransactionsNormalized records rows surviving normalization.
func AddTransactionsNormalized(n int) {
	if globalManager.enabled {
		globalManager.transactionsNormalized.Add(float64(n))
	}
}

// AddDuplicatesCollapsed records same-day duplicate rows folded away.
func AddDuplicatesCollapsed(n int) {
	if globalManager.enabled {
		globalManager.duplicatesCollapsed.Add(float64(n))
	}
}

// IncLedgerErrors records a ledger load failure.
func IncLedgerErrors() {
	if globalManager.enabled {
		globalManager.ledgerErrors.Inc()
	}
}

// IncSubgroupRuns records a completed subgroup analysis.
func IncSubgroupRuns() {
	if globalManager.enabled {
		globalManager.subgroupRuns.Inc()
	}
}

// IncSubgroupsSkipped records a subgroup with no matching transactions.
func IncSubgroupsSkipped() {
	if globalManager.enabled {
		globalManager.subgroupsSkipped.Inc()
	}
}

// IncAccountsEstimated records an account that produced a defined period.
func IncAccountsEstimated() {
	if globalManager.enabled {
		globalManager.accountsEstimated.Inc()
	}
}

// IncEstimatorSkips records an account omitted for insufficient history.
func IncEstimatorSkips() {
	if globalManager.enabled {
		globalManager.estimatorSkips.Inc()
	}
}

// ObserveRunDuration records the duration of a full analysis run.
func ObserveRunDuration(d time.Duration) {
	if globalManager.enabled {
		globalManager.runDuration.Observe(d.Seconds())
	}
}

// ObserveEstimationLatency records one per-account estimation duration.
func ObserveEstimationLatency(d time.Duration) {
	if globalManager.enabled {
		globalManager.estimationLatency.Observe(d.Seconds())
	}
}

// SetAccountsTracked records the number of distinct accounts in the ledger.
func SetAccountsTracked(n int) {
	if globalManager.enabled {
		globalManager.accountsTracked.Set(float64(n))
	}
}

// AddSeriesBuckets records calendar buckets emitted by the aggregator.
func AddSeriesBuckets(n int) {
	if globalManager.enabled {
		globalManager.seriesBucketsEmitted.Add(float64(n))
	}
}
