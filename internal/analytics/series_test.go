package analytics

import (
	"errors"
	"testing"

	"finans/internal/core"
)

func txn(date core.Date, amount float64) core.Transaction {
	return core.Transaction{UserID: 1, Category: "Mad", Amount: amount, Date: date}
}

func TestBuildDailySeriesFillsGaps(t *testing.T) {
	series, err := BuildDailySeries([]core.Transaction{
		txn(core.NewDate(2025, 4, 1), 100),
		txn(core.NewDate(2025, 4, 3), 50),
	})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	want := []float64{100, 0, 50}
	if len(series.Amounts) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(series.Amounts))
	}
	for i, w := range want {
		if series.Amounts[i] != w {
			t.Fatalf("day %d: expected %v, got %v", i, w, series.Amounts[i])
		}
	}
	if !series.Start.Equal(core.NewDate(2025, 4, 1).Time) {
		t.Fatalf("expected start 2025-04-01, got %v", series.Start)
	}
	if series.Total() != 150 {
		t.Fatalf("expected total 150, got %v", series.Total())
	}
}

func TestBuildDailySeriesEmptyInput(t *testing.T) {
	if _, err := BuildDailySeries(nil); !errors.Is(err, ErrNoTransactions) {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}
	if _, err := BuildDailySeries([]core.Transaction{}); !errors.Is(err, ErrNoTransactions) {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}
}

func TestBuildDailySeriesUnsortedDuplicates(t *testing.T) {
	// Out of order, several transactions on the same day.
	series, err := BuildDailySeries([]core.Transaction{
		txn(core.NewDate(2025, 3, 10), 20),
		txn(core.NewDate(2025, 3, 5), 5),
		txn(core.NewDate(2025, 3, 10), 30),
		txn(core.NewDate(2025, 3, 7), 7),
		txn(core.NewDate(2025, 3, 10), -10), // refund on the same day
	})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if got, want := series.Len(), 6; got != want { // Mar 5 .. Mar 10 inclusive
		t.Fatalf("expected %d days, got %d", want, got)
	}
	want := []float64{5, 0, 7, 0, 0, 40}
	for i, w := range want {
		if series.Amounts[i] != w {
			t.Fatalf("day %d: expected %v, got %v", i, w, series.Amounts[i])
		}
	}
	// Conservation: series total equals the input total.
	if series.Total() != 52 {
		t.Fatalf("expected total 52, got %v", series.Total())
	}
}

func TestBuildDailySeriesSingleDay(t *testing.T) {
	series, err := BuildDailySeries([]core.Transaction{txn(core.NewDate(2025, 6, 15), 42)})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if series.Len() != 1 || series.Amounts[0] != 42 {
		t.Fatalf("expected single-day series [42], got %v", series.Amounts)
	}
}

func TestDailySeriesDay(t *testing.T) {
	series := DailySeries{Start: core.NewDate(2025, 4, 28), Amounts: []float64{1, 2, 3, 4}}
	if got := series.Day(0); !got.Equal(core.NewDate(2025, 4, 28).Time) {
		t.Fatalf("day 0: got %v", got)
	}
	// Crosses the month boundary.
	if got := series.Day(3); !got.Equal(core.NewDate(2025, 5, 1).Time) {
		t.Fatalf("day 3: got %v", got)
	}
}

func TestDailySeriesMonthToDate(t *testing.T) {
	// March 30 .. April 3.
	series := DailySeries{
		Start:   core.NewDate(2025, 3, 30),
		Amounts: []float64{100, 200, 10, 20, 40},
	}

	cases := []struct {
		ref  core.Date
		want float64
	}{
		{core.NewDate(2025, 4, 30), 70},  // all of April
		{core.NewDate(2025, 4, 2), 30},   // April up to the 2nd
		{core.NewDate(2025, 4, 1), 10},   // April 1st only
		{core.NewDate(2025, 3, 31), 300}, // March days only
		{core.NewDate(2025, 5, 15), 0},   // month with no series days
	}
	for i, tc := range cases {
		if got := series.MonthToDate(tc.ref); got != tc.want {
			t.Fatalf("case %d (%v): expected %v, got %v", i, tc.ref, tc.want, got)
		}
	}
}
