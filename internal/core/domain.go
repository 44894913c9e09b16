package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DateLayout is the wire format for all calendar dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar day without a time-of-day component,
	// serialized as a YYYY-MM-DD string.
	Date struct {
		time.Time
	}

	// Transaction is a single spending record belonging to one user.
	// Amounts are signed: refunds and corrections are negative.
	Transaction struct {
		ID       int64   `json:"id"`
		UserID   int64   `json:"user_id"`
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
		Date     Date    `json:"date"`
	}

	// Budget is a per-category monthly spending limit for one user.
	// Each user can hold at most one budget per category.
	Budget struct {
		ID           int64   `json:"id"`
		UserID       int64   `json:"user_id"`
		Category     string  `json:"category"`
		MonthlyLimit float64 `json:"monthly_limit"`
	}

	// Goal is a savings target. Contributions accumulate in
	// CurrentAmount and are clamped at TargetAmount. DueDate is
	// optional and zero when unset.
	Goal struct {
		ID            int64   `json:"id"`
		UserID        int64   `json:"user_id"`
		Name          string  `json:"name"`
		TargetAmount  float64 `json:"target_amount"`
		CurrentAmount float64 `json:"current_amount"`
		DueDate       Date    `json:"due_date"`
	}
)

var (
	ErrInvalidUser     = errors.New("invalid user id")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateBudget = errors.New("budget already exists for category")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// DaysInMonth returns the number of days in the date's month,
// accounting for leap years.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year(), d.Time.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddDays returns the date n calendar days later (earlier if negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// DaysUntil returns the number of whole days from d to other.
// Negative when other precedes d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time) / (24 * time.Hour))
}

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// IsEmpty returns true if the date is zero (optional dates are zero when unset).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// MarshalJSON writes the date as a YYYY-MM-DD string, or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return ErrInvalidUser
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	return t.Date.Validate()
}

func (b Budget) Validate() error {
	if b.UserID <= 0 {
		return ErrInvalidUser
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	// Zero and negative limits are stored as-is; the observation
	// analysis flags them instead of rejecting them here.
	if math.IsNaN(b.MonthlyLimit) || math.IsInf(b.MonthlyLimit, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func (g Goal) Validate() error {
	if g.UserID <= 0 {
		return ErrInvalidUser
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount <= 0 || math.IsNaN(g.TargetAmount) || math.IsInf(g.TargetAmount, 0) {
		return ErrInvalidAmount
	}
	return nil
}
