package storage

import (
	"context"
	"fmt"

	"finans/internal/core"
)

// ResetAll wipes every transaction, budget and goal. Only the seeding
// flow calls this.
func (r *SQLiteRepository) ResetAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	for _, table := range []string{"transactions", "budgets", "goals"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			tx.Rollback()
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// SeedSampleData wipes every table and loads the demo dataset for a
// single test user, all in one database transaction. Returns the user
// id the rows belong to.
func (r *SQLiteRepository) SeedSampleData(ctx context.Context) (int64, error) {
	const userID int64 = 1

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "budgets", "goals"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return 0, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, t := range sampleTransactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (user_id, category, amount, date) VALUES (?, ?, ?, ?)`,
			userID, t.category, t.amount, t.date); err != nil {
			return 0, fmt.Errorf("seed transaction: %w", err)
		}
	}
	for _, b := range sampleBudgets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (user_id, category, monthly_limit) VALUES (?, ?, ?)`,
			userID, b.category, b.limit); err != nil {
			return 0, fmt.Errorf("seed budget: %w", err)
		}
	}
	for _, g := range sampleGoals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO goals (user_id, name, target_amount, current_amount, due_date) VALUES (?, ?, ?, ?, ?)`,
			userID, g.name, g.target, g.current, g.due); err != nil {
			return 0, fmt.Errorf("seed goal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return userID, nil
}

// Demo fixtures. May's Mad spending intentionally exceeds its budget so
// the seeded user has an over-limit observation to look at.
var sampleTransactions = []struct {
	category string
	amount   float64
	date     string
}{
	{"Mad", 150.0, "2025-04-01"},
	{"Transport", 75.5, "2025-04-03"},
	{"Underholdning", 200.0, "2025-04-05"},
	{"Regninger", 450.0, "2025-04-07"},
	{"Mad", 80.0, "2025-04-10"},
	{"Shopping", 300.0, "2025-04-12"},
	{"Mad", 120.0, "2025-05-01"},
	{"Transport", 60.0, "2025-05-05"},
	{"Underholdning", 100.0, "2025-05-10"},
	{"Mad", 210.0, "2025-05-13"},
}

var sampleBudgets = []struct {
	category string
	limit    float64
}{
	{"Mad", 300.0},
	{"Transport", 200.0},
	{"Underholdning", 150.0},
}

var sampleGoals = []struct {
	name    string
	target  float64
	current float64
	due     string
}{
	{"Ny Laptop", 1500.0, 250.0, "2025-08-31"},
	{"Ferie", 5000.0, 1000.0, "2026-06-30"},
}

// InsertTransactions bulk-inserts in a single database transaction.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txns []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (user_id, category, amount, date) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		if _, err := stmt.ExecContext(ctx, t.UserID, t.Category, t.Amount, t.Date.String()); err != nil {
			tx.Rollback()
			return fmt.Errorf("bulk insert transaction: %w", err)
		}
	}
	return tx.Commit()
}
