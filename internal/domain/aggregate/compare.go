package aggregate

import (
	"fmt"
	"time"

	"github.com/donorlab/cadence/internal/domain/model"
)

// Rebucket folds a daily series into coarser buckets at granularity g,
// summing amounts and donation counts and densifying the result. Rebucketing
// an already-daily series returns it unchanged.
func Rebucket(daily model.BucketedSeries, g Granularity) (model.BucketedSeries, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrBadGranularity, g)
	}
	if g == Day || len(daily) == 0 {
		return daily, nil
	}

	type acc struct {
		amount model.Money
		count  int
	}
	buckets := make(map[time.Time]*acc)
	for _, p := range daily {
		b := g.BucketStart(p.BucketStart)
		a, ok := buckets[b]
		if !ok {
			a = &acc{}
			buckets[b] = a
		}
		a.amount = a.amount.Add(p.TotalAmount)
		a.count += p.DonationCount
	}

	minB := g.BucketStart(daily[0].BucketStart)
	maxB := g.BucketStart(daily[len(daily)-1].BucketStart)
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

// MonthlyMeans computes per-month means for several named daily series at
// once, ready for side-by-side comparison of subgroups.
func MonthlyMeans(byName map[string]model.BucketedSeries) map[string]map[time.Month]model.Means {
	out := make(map[string]map[time.Month]model.Means, len(byName))
	for name, s := range byName {
		out[name] = MeanByMonthOfYear(s)
	}
	return out
}

// Align re-spans each series onto the union of all bucket ranges at
// granularity g, zero-filling buckets a series does not cover. All returned
// series share identical length and bucket starts, ready for overlay
// rendering. Series that are empty stay empty; if every series is empty the
// result is an all-empty slice.
//
// Align carries no analytical content: it only reshapes series the
// aggregator already produced.
func Align(g Granularity, series ...model.BucketedSeries) []model.BucketedSeries {
	var minB, maxB time.Time
	for _, s := range series {
		if len(s) == 0 {
			continue
		}
		first, last := s[0].BucketStart, s[len(s)-1].BucketStart
		if minB.IsZero() || first.Before(minB) {
			minB = first
		}
		if maxB.IsZero() || last.After(maxB) {
			maxB = last
		}
	}

	out := make([]model.BucketedSeries, len(series))
	if minB.IsZero() {
		return out
	}
	for i, s := range series {
		if len(s) == 0 {
			continue
		}
		byStart := make(map[time.Time]model.SeriesPoint, len(s))
		for _, p := range s {
			byStart[p.BucketStart] = p
		}
		var aligned model.BucketedSeries
		for b := minB; !b.After(maxB); b = g.next(b) {
			p, ok := byStart[b]
			if !ok {
				p = model.SeriesPoint{BucketStart: b}
			}
			aligned = append(aligned, p)
		}
		out[i] = aligned
	}
	return out
}
