package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finans/internal/core"
)

// CreateTransaction inserts a transaction and returns it with the
// database ID filled in.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category, amount, date) VALUES (?, ?, ?, ?)`,
		t.UserID, t.Category, t.Amount, t.Date.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id
	return t, nil
}

// GetTransaction fetches one transaction scoped to its owner;
// core.ErrNotFound when it does not exist or belongs to someone else.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id, userID int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, amount, date FROM transactions
		 WHERE id = ? AND user_id = ?`, id, userID)

	var t core.Transaction
	var date string
	err := row.Scan(&t.ID, &t.UserID, &t.Category, &t.Amount, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	t.Date = d
	return t, nil
}

// ListTransactions returns all of a user's transactions, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, user_id, category, amount, date FROM transactions
		 WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
}

// TransactionHistory returns all of a user's transactions oldest first,
// the input order the analytics pipeline expects.
func (r *SQLiteRepository) TransactionHistory(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, user_id, category, amount, date FROM transactions
		 WHERE user_id = ? ORDER BY date ASC, id ASC`, userID)
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// UpdateTransaction rewrites a transaction's category, amount and date.
// The row must belong to t.UserID; otherwise core.ErrNotFound.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET category = ?, amount = ?, date = ? WHERE id = ? AND user_id = ?`,
		t.Category, t.Amount, t.Date.String(), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

// DeleteTransaction removes a transaction owned by userID; otherwise
// core.ErrNotFound.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// CategorySummary totals a user's spending per category over the whole
// history.
func (r *SQLiteRepository) CategorySummary(ctx context.Context, userID int64) (core.CategorySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount) FROM transactions WHERE user_id = ? GROUP BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	defer rows.Close()

	summary := make(core.CategorySummary)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan category summary: %w", err)
		}
		summary[category] = total
	}
	return summary, rows.Err()
}

// MonthlySummary totals a user's spending per YYYY-MM month, oldest
// month first.
func (r *SQLiteRepository) MonthlySummary(ctx context.Context, userID int64) ([]core.MonthTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT substr(date, 1, 7) AS month, SUM(amount) FROM transactions
		 WHERE user_id = ? GROUP BY month ORDER BY month`, userID)
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}
	defer rows.Close()

	var months []core.MonthTotal
	for rows.Next() {
		var m core.MonthTotal
		if err := rows.Scan(&m.Month, &m.TotalSpending); err != nil {
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// SpentByCategory totals a user's spending per category over the
// inclusive [from, to] date range.
func (r *SQLiteRepository) SpentByCategory(ctx context.Context, userID int64, from, to core.Date) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount) FROM transactions
		 WHERE user_id = ? AND date BETWEEN ? AND ? GROUP BY category`,
		userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("spent by category: %w", err)
	}
	defer rows.Close()

	spent := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan spent by category: %w", err)
		}
		spent[category] = total
	}
	return spent, rows.Err()
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var t core.Transaction
	var date string
	if err := rows.Scan(&t.ID, &t.UserID, &t.Category, &t.Amount, &date); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	t.Date = d
	return t, nil
}

// requireRow maps a zero-row write to core.ErrNotFound, the shared
// "not yours or not there" signal.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
