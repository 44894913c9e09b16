package core

// CategorySummary maps category name to total spending across all of a
// user's transactions.
type CategorySummary map[string]float64

// MonthTotal is the total spending for one YYYY-MM month.
type MonthTotal struct {
	Month         string  `json:"month"`
	TotalSpending float64 `json:"total_spending"`
}

// BudgetStatus compares one budget's monthly limit against what was
// actually spent in that category during the current month.
type BudgetStatus struct {
	Category     string  `json:"category"`
	MonthlyLimit float64 `json:"monthly_limit"`
	Spent        float64 `json:"spent"`
	Remaining    float64 `json:"remaining"`
}
