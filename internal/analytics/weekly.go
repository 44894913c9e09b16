package analytics

import "finans/internal/core"

// WeeklyPattern decomposes a daily series into full weeks counted from
// the series' first date. Weekday columns are offsets from that first
// date, not calendar Monday.
type WeeklyPattern struct {
	WeeklyTotals []float64
	WeekdayMeans []float64
	WeekdayStds  []float64
	TopWeekIndex int
}

// ComputeWeeklyPattern builds the daily series from a raw transaction
// snapshot and analyzes its weekly structure. Returns ErrNoTransactions
// when the snapshot is empty.
func ComputeWeeklyPattern(txns []core.Transaction) (WeeklyPattern, error) {
	series, err := BuildDailySeries(txns)
	if err != nil {
		return WeeklyPattern{}, err
	}
	return AnalyzeWeeks(series)
}

// AnalyzeWeeks pads the series with trailing zeros to a whole number of
// weeks, reshapes it row-major into weeks x 7 days, and reports per-week
// totals plus per-weekday mean and population standard deviation.
//
// The zero padding of the last partial week is counted in the weekday
// columns, pulling their means and stds toward zero. That distortion is
// kept deliberately: downstream consumers were built against it.
func AnalyzeWeeks(s DailySeries) (WeeklyPattern, error) {
	if s.Len() == 0 {
		return WeeklyPattern{}, ErrNoTransactions
	}

	weeks := (s.Len() + 6) / 7
	padded := make([]float64, weeks*7)
	copy(padded, s.Amounts)

	totals := make([]float64, weeks)
	for w := 0; w < weeks; w++ {
		var sum float64
		for j := 0; j < 7; j++ {
			sum += padded[w*7+j]
		}
		totals[w] = sum
	}

	means := make([]float64, 7)
	stds := make([]float64, 7)
	column := make([]float64, weeks)
	for j := 0; j < 7; j++ {
		for w := 0; w < weeks; w++ {
			column[w] = padded[w*7+j]
		}
		means[j] = mean(column)
		stds[j] = populationStd(column)
	}

	top := 0
	for i, v := range totals {
		// strict > keeps the first occurrence on ties
		if v > totals[top] {
			top = i
		}
	}

	return WeeklyPattern{
		WeeklyTotals: totals,
		WeekdayMeans: means,
		WeekdayStds:  stds,
		TopWeekIndex: top,
	}, nil
}
