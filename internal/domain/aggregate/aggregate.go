// Package aggregate turns irregular timestamped transactions into dense,
// gap-filled calendar series.
//
// Densification is the point: a day with no donations becomes an explicit
// zero bucket, so downstream averaging and spectral analysis see silence as
// a real observation instead of a missing one.
package aggregate

import (
	"fmt"
	"time"

	"github.com/donorlab/cadence/internal/domain/model"
)

// Granularity selects the calendar bucket width.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	return g == Day || g == Week || g == Month
}

// BucketStart maps t to the start of its bucket: the day itself, the
// Sunday starting its week, or the first of its month.
func (g Granularity) BucketStart(t time.Time) time.Time {
	d := model.Day(t)
	switch g {
	case Week:
		return d.AddDate(0, 0, -int(d.Weekday()))
	case Month:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return d
	}
}

// next returns the start of the bucket after t.
func (g Granularity) next(t time.Time) time.Time {
	switch g {
	case Week:
		return t.AddDate(0, 0, 7)
	case Month:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Aggregate buckets txns at granularity g and returns the complete series
// spanning [min bucket, max bucket] with zero-valued entries where no
// activity occurred.
//
// Input order does not matter and the caller need not pre-sort; it must have
// been deduplicated per (account, day) upstream if one-engagement-per-day
// counting is wanted. Empty input yields an empty series, not an error.
// The sum of TotalAmount over the output equals the sum of Amount over the
// input exactly (integer cents).
func Aggregate(txns []model.Transaction, g Granularity) (model.BucketedSeries, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrBadGranularity, g)
	}
	if len(txns) == 0 {
		return nil, nil
	}

	type acc struct {
		amount model.Money
		count  int
	}
	buckets := make(map[time.Time]*acc)
	var minB, maxB time.Time
	for i, t := range txns {
		if t.Date.IsZero() {
			return nil, fmt.Errorf("transaction %d (account %q): %w", i, t.AccountID, ErrZeroDate)
		}
		b := g.BucketStart(t.Date)
		a, ok := buckets[b]
		if !ok {
			a = &acc{}
			buckets[b] = a
		}
		a.amount = a.amount.Add(t.Amount)
		a.count++
		if minB.IsZero() || b.Before(minB) {
			minB = b
		}
		if maxB.IsZero() || b.After(maxB) {
			maxB = b
		}
	}

	var series model.BucketedSeries
	for b := minB; !b.After(maxB); b = g.next(b) {
		p := model.SeriesPoint{BucketStart: b}
		if a, ok := buckets[b]; ok {
			p.TotalAmount = a.amount
			p.DonationCount = a.count
		}
		series = append(series, p)
	}
	return series, nil
}

// MeanByWeekday averages a daily series per day of week. Weekdays with no
// observed buckets are omitted: there is nothing to average over.
func MeanByWeekday(series model.BucketedSeries) map[time.Weekday]model.Means {
	sums := make(map[time.Weekday]*meanAcc)
	for _, p := range series {
		wd := p.BucketStart.Weekday()
		if sums[wd] == nil {
			sums[wd] = &meanAcc{}
		}
		sums[wd].add(p)
	}
	out := make(map[time.Weekday]model.Means, len(sums))
	for wd, a := range sums {
		out[wd] = a.means()
	}
	return out
}

// MeanByMonthOfYear averages a series per calendar month (January..December)
// of the bucket start. Months with no observed buckets are omitted.
func MeanByMonthOfYear(series model.BucketedSeries) map[time.Month]model.Means {
	sums := make(map[time.Month]*meanAcc)
	for _, p := range series {
		m := p.BucketStart.Month()
		if sums[m] == nil {
			sums[m] = &meanAcc{}
		}
		sums[m].add(p)
	}
	out := make(map[time.Month]model.Means, len(sums))
	for m, a := range sums {
		out[m] = a.means()
	}
	return out
}

type meanAcc struct {
	amount float64
	count  float64
	n      int
}

func (a *meanAcc) add(p model.SeriesPoint) {
	a.amount += p.TotalAmount.Units()
	a.count += float64(p.DonationCount)
	a.n++
}

func (a *meanAcc) means() model.Means {
	return model.Means{
		Amount: a.amount / float64(a.n),
		Count:  a.count / float64(a.n),
	}
}
