// Package analytics computes spending statistics over a user's
// transaction history: a gap-free daily spending series, a bootstrap
// Monte Carlo forecast of end-of-month spend, and a week-by-weekday
// pattern decomposition. All computations are pure and stateless; the
// caller passes a snapshot of transactions in and gets a result back.
package analytics

import (
	"errors"

	"finans/internal/core"
)

// ErrNoTransactions signals that an analysis was requested for a user
// with no transaction history. Callers map it to the "Ingen data"
// response instead of attempting simulation over an empty pool.
var ErrNoTransactions = errors.New("no transactions")

// DailySeries is a dense daily spending series: Amounts[i] is the total
// spent on Start plus i days. Every day between the first and last
// transaction date is present, zero-filled when nothing was spent.
type DailySeries struct {
	Start   core.Date
	Amounts []float64
}

// BuildDailySeries collapses raw transactions into a DailySeries.
// Input may be unsorted and may contain multiple transactions per day;
// amounts on the same day are summed. Returns ErrNoTransactions for an
// empty snapshot rather than deriving a date range from zero records.
func BuildDailySeries(txns []core.Transaction) (DailySeries, error) {
	if len(txns) == 0 {
		return DailySeries{}, ErrNoTransactions
	}

	totals := make(map[string]float64, len(txns))
	first, last := txns[0].Date, txns[0].Date
	for _, t := range txns {
		totals[t.Date.String()] += t.Amount
		if t.Date.Before(first.Time) {
			first = t.Date
		}
		if t.Date.After(last.Time) {
			last = t.Date
		}
	}

	amounts := make([]float64, 0, first.DaysUntil(last)+1)
	for d := first; !d.After(last.Time); d = d.AddDays(1) {
		amounts = append(amounts, totals[d.String()])
	}
	return DailySeries{Start: first, Amounts: amounts}, nil
}

// Len returns the number of days covered by the series.
func (s DailySeries) Len() int {
	return len(s.Amounts)
}

// Day returns the calendar date at index i.
func (s DailySeries) Day(i int) core.Date {
	return s.Start.AddDays(i)
}

// Total returns the sum of all daily amounts.
func (s DailySeries) Total() float64 {
	var sum float64
	for _, a := range s.Amounts {
		sum += a
	}
	return sum
}

// MonthToDate sums the amounts of the days that fall in ref's calendar
// month, up to and including ref itself. Days of other months and days
// after ref contribute nothing.
func (s DailySeries) MonthToDate(ref core.Date) float64 {
	var sum float64
	for i, a := range s.Amounts {
		d := s.Day(i)
		if d.SameMonth(ref) && !d.After(ref.Time) {
			sum += a
		}
	}
	return sum
}
