// Package model contains domain models passed between layers.
package model

import "time"

// Transaction represents a single normalized donation row from the ledger.
// Date is truncated to day resolution (midnight UTC); after normalization
// there is at most one Transaction per (AccountID, Date) pair.
type Transaction struct {
	AccountID string    // donor account identifier
	Date      time.Time // calendar day of the donation, midnight UTC
	Amount    Money     // donation amount
	Kind      string    // CRM constituent type, e.g. "Individual", "Organization"
	Groups    string    // CRM group memberships, e.g. "Monthly Donors"
}

// Day truncates t to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Subgroup names a donor segment via a membership predicate.
// Definitions are fixed at run configuration time and read-only thereafter.
type Subgroup struct {
	Name   string
	Member func(Transaction) bool
}

// SeriesPoint is one calendar bucket of an aggregated series.
// A bucket with no activity carries explicit zeros rather than being omitted.
type SeriesPoint struct {
	BucketStart   time.Time
	TotalAmount   Money
	DonationCount int
}

// BucketedSeries is a dense, gap-free series of calendar buckets with
// strictly increasing, contiguous BucketStart values.
type BucketedSeries []SeriesPoint

// Total returns the sum of TotalAmount over the series.
func (s BucketedSeries) Total() Money {
	var total Money
	for _, p := range s {
		total = total.Add(p.TotalAmount)
	}
	return total
}

// PeriodicityResult carries the estimated dominant donation cadence for one
// account. Accounts with insufficient history produce no result at all.
type PeriodicityResult struct {
	AccountID  string
	PeriodDays float64
}

// AccountProfile summarizes one account's donation history.
type AccountProfile struct {
	AccountID   string
	FirstDate   time.Time
	LastDate    time.Time
	TenureDays  int // days between first donation and the observation date
	RecencyDays int // days between last donation and the observation date
	TxnCount    int
	TotalAmount Money
	AvgAmount   float64 // currency units
	StdAmount   float64 // population standard deviation, currency units
	Active      bool    // donated within the active-recency window
}

// Means holds the per-calendar-field averages of a daily series.
type Means struct {
	Amount float64 // mean TotalAmount per bucket, currency units
	Count  float64 // mean DonationCount per bucket
}

// RunResult is the full analysis output for one subgroup.
type RunResult struct {
	RunID       string // shared across all subgroups of a single analysis run
	Subgroup    string
	Daily       BucketedSeries
	Periodicity []PeriodicityResult
	Profiles    []AccountProfile
	WeekdayMean map[time.Weekday]Means
	MonthMean   map[time.Month]Means
}
