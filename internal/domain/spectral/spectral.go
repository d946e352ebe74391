// Package spectral estimates a donor's dominant donation cadence.
//
// An account's history becomes a binary daily-activity signal over the days
// it spans, the signal's mean is removed so the DC component cannot dominate,
// and the strongest bin of the one-sided magnitude spectrum names the
// recurrence period in days.
package spectral

import (
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/donorlab/cadence/internal/domain/model"
)

// Estimation preconditions. Below these thresholds there is no usable signal.
const (
	minDistinctDates = 3
	minSpanDays      = 2
)

// EstimateDominantPeriod returns the dominant recurrence period, in days, of
// the given donation dates for one account. The boolean is false when the
// account has fewer than 3 distinct donation days or spans under 2 days;
// such accounts are silently omitted from result collections, never an error.
//
// When defined, the period lies in (0, L] days and equals L/k for an integer
// k in [1, floor(L/2)], where L is the inclusive day span of the history.
func EstimateDominantPeriod(dates []time.Time) (float64, bool) {
	signal, ok := activitySignal(dates)
	if !ok {
		return 0, false
	}

	// Remove the mean so bin 0 carries no energy.
	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(len(signal))
	for i := range signal {
		signal[i] -= mean
	}

	mags := OneSidedSpectrum(signal)

	// Dominant non-DC bin; ties resolve to the lowest k (longest period)
	// so the estimate is deterministic.
	best := 1
	for k := 2; k < len(mags); k++ {
		if mags[k] > mags[best] {
			best = k
		}
	}
	return float64(len(signal)) / float64(best), true
}

// OneSidedSpectrum returns the one-sided magnitude spectrum of seq,
// normalized by its length: floor(L/2)+1 bins, with every bin doubled except
// bin 0 and, for even L, the Nyquist bin, so the one-sided view carries the
// full signal's energy. Bin k corresponds to frequency k/L cycles per day,
// i.e. period L/k days.
func OneSidedSpectrum(seq []float64) []float64 {
	n := len(seq)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	mags := make([]float64, len(coeffs))
	for k, c := range coeffs {
		m := cmplx.Abs(c) / float64(n)
		if k != 0 && !(n%2 == 0 && k == len(coeffs)-1) {
			m *= 2
		}
		mags[k] = m
	}
	return mags
}

// activitySignal builds the binary indicator over the inclusive day range
// [min(dates), max(dates)]: 1 where a donation occurred, 0 elsewhere.
// Gaps count as real zero-activity days.
func activitySignal(dates []time.Time) ([]float64, bool) {
	days := make(map[int64]struct{}, len(dates))
	var minD, maxD int64
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		u := model.Day(d).Unix() / secondsPerDay
		if len(days) == 0 {
			minD, maxD = u, u
		} else {
			minD = min(minD, u)
			maxD = max(maxD, u)
		}
		days[u] = struct{}{}
	}
	if len(days) < minDistinctDates || maxD-minD < minSpanDays {
		return nil, false
	}

	signal := make([]float64, maxD-minD+1)
	for u := range days {
		signal[u-minD] = 1
	}
	return signal, true
}

const secondsPerDay = 86400

// PeriodFrequency converts a defined period back to its spectral frequency
// in cycles per day. Exposed for diagnostics output.
func PeriodFrequency(periodDays float64) float64 {
	if periodDays <= 0 || math.IsInf(periodDays, 0) {
		return 0
	}
	return 1 / periodDays
}
