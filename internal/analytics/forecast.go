package analytics

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sort"
	"time"

	"finans/internal/core"
)

// DefaultSimulations is the number of bootstrap trials per forecast.
const DefaultSimulations = 5000

// ForecastOptions tune a single forecast run. The zero value runs
// DefaultSimulations trials on a crypto-seeded random source.
type ForecastOptions struct {
	// Simulations bounds the work done per request. Zero or negative
	// falls back to DefaultSimulations.
	Simulations int
	// Source supplies the randomness for resampling. Every invocation
	// gets its own source; inject a seeded one for reproducible runs.
	Source rand.Source
}

// Forecast is the outcome of a Monte Carlo end-of-month simulation:
// percentile estimates of total spend for the reference date's month.
type Forecast struct {
	DaysLeft    int
	Simulations int
	P5          float64
	P50         float64
	P95         float64
}

// ComputeForecast simulates end-of-month spending for the month of ref
// from a raw transaction snapshot. Returns ErrNoTransactions when the
// snapshot is empty.
func ComputeForecast(txns []core.Transaction, ref core.Date, opts ForecastOptions) (Forecast, error) {
	series, err := BuildDailySeries(txns)
	if err != nil {
		return Forecast{}, err
	}
	return ForecastSeries(series, ref, opts)
}

// ForecastSeries runs the simulation over an already-built daily series.
//
// Each trial draws one value per remaining day of the month, with
// replacement, from the full historical pool of daily amounts and adds
// what was already spent in ref's month. The spread of the trial totals
// gives the 5th/50th/95th percentile estimates. The draw is a plain
// bootstrap: no trend or weekday conditioning, the weekly pattern
// analysis reports that separately.
func ForecastSeries(s DailySeries, ref core.Date, opts ForecastOptions) (Forecast, error) {
	if s.Len() == 0 {
		return Forecast{}, ErrNoTransactions
	}

	sims := opts.Simulations
	if sims <= 0 {
		sims = DefaultSimulations
	}
	src := opts.Source
	if src == nil {
		src = NewSource()
	}
	rng := rand.New(src)

	daysLeft := ref.DaysInMonth() - ref.Day()
	spentSoFar := s.MonthToDate(ref)

	pool := s.Amounts
	totals := make([]float64, sims)
	for i := range totals {
		sum := spentSoFar
		for d := 0; d < daysLeft; d++ {
			sum += pool[rng.IntN(len(pool))]
		}
		totals[i] = sum
	}
	sort.Float64s(totals)

	return Forecast{
		DaysLeft:    daysLeft,
		Simulations: sims,
		P5:          round2(percentile(totals, 5)),
		P50:         round2(percentile(totals, 50)),
		P95:         round2(percentile(totals, 95)),
	}, nil
}

// NewSource returns a PCG source seeded from the system entropy pool,
// falling back to the clock if that fails.
func NewSource() rand.Source {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		now := uint64(time.Now().UnixNano())
		return rand.NewPCG(now, now<<1|1)
	}
	return rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]))
}
