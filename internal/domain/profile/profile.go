// Package profile derives per-account history summaries from normalized
// transactions: tenure, recency, and amount statistics as of a fixed
// observation date.
package profile

import (
	"math"
	"time"

	"github.com/donorlab/cadence/internal/domain/model"
)

// DefaultActiveRecencyMax is the default window, in days, within which an
// account's last donation marks it as still active.
const DefaultActiveRecencyMax = 90

// Build summarizes one account's transactions as of asOf. Transactions must
// all belong to the same account and be non-empty; the second return is
// false for empty input.
func Build(txns []model.Transaction, asOf time.Time, activeRecencyMax int) (model.AccountProfile, bool) {
	if len(txns) == 0 {
		return model.AccountProfile{}, false
	}

	p := model.AccountProfile{
		AccountID: txns[0].AccountID,
		FirstDate: txns[0].Date,
		LastDate:  txns[0].Date,
		TxnCount:  len(txns),
	}
	for _, t := range txns {
		if t.Date.Before(p.FirstDate) {
			p.FirstDate = t.Date
		}
		if t.Date.After(p.LastDate) {
			p.LastDate = t.Date
		}
		p.TotalAmount = p.TotalAmount.Add(t.Amount)
	}

	day := model.Day(asOf)
	p.TenureDays = daysBetween(p.FirstDate, day)
	p.RecencyDays = daysBetween(p.LastDate, day)
	p.Active = p.RecencyDays <= activeRecencyMax

	p.AvgAmount = p.TotalAmount.Units() / float64(len(txns))
	var ss float64
	for _, t := range txns {
		d := t.Amount.Units() - p.AvgAmount
		ss += d * d
	}
	// Population standard deviation; a single donation has zero spread.
	p.StdAmount = math.Sqrt(ss / float64(len(txns)))

	return p, true
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
