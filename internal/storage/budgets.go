package storage

import (
	"context"
	"fmt"
	"strings"

	"finans/internal/core"
)

// CreateBudget inserts a budget and returns it with the database ID
// filled in. A second budget for the same (user, category) pair returns
// core.ErrDuplicateBudget.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category, monthly_limit) VALUES (?, ?, ?)`,
		b.UserID, b.Category, b.MonthlyLimit)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return core.Budget{}, core.ErrDuplicateBudget
		}
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget insert id: %w", err)
	}
	b.ID = id
	return b, nil
}

// ListBudgets returns all budgets a user has set.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category, monthly_limit FROM budgets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// BudgetStatuses pairs each of a user's budgets with the amount spent
// in that category during ref's calendar month. Categories without a
// budget are not reported even when money was spent there.
func (r *SQLiteRepository) BudgetStatuses(ctx context.Context, userID int64, ref core.Date) ([]core.BudgetStatus, error) {
	budgets, err := r.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	first := core.NewDate(ref.Year(), ref.Month(), 1)
	last := core.NewDate(ref.Year(), ref.Month(), ref.DaysInMonth())
	spent, err := r.SpentByCategory(ctx, userID, first, last)
	if err != nil {
		return nil, err
	}

	statuses := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		statuses = append(statuses, core.BudgetStatus{
			Category:     b.Category,
			MonthlyLimit: b.MonthlyLimit,
			Spent:        spent[b.Category],
			Remaining:    b.MonthlyLimit - spent[b.Category],
		})
	}
	return statuses, nil
}
