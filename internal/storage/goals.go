package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finans/internal/core"
)

// CreateGoal inserts a goal and returns it with the database ID filled
// in. DueDate may be zero; it is stored as NULL.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, name, target_amount, current_amount, due_date) VALUES (?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, nullableDate(g.DueDate))
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal insert id: %w", err)
	}
	g.ID = id
	return g, nil
}

// ListGoals returns all goals belonging to a user.
func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, due_date
		 FROM goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// GetGoal fetches one goal scoped to its owner; core.ErrNotFound when
// it does not exist or belongs to someone else.
func (r *SQLiteRepository) GetGoal(ctx context.Context, id, userID int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, due_date
		 FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// ContributeToGoal adds amount to a goal's saved total, clamped at the
// target, and returns the updated goal. Scoped to its owner;
// core.ErrNotFound when the goal is missing or not theirs.
func (r *SQLiteRepository) ContributeToGoal(ctx context.Context, id, userID int64, amount float64) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET current_amount = MIN(current_amount + ?, target_amount)
		 WHERE id = ? AND user_id = ?`,
		amount, id, userID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("contribute to goal: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.Goal{}, err
	}
	return r.GetGoal(ctx, id, userID)
}

func scanGoal(scan func(dest ...any) error) (core.Goal, error) {
	var g core.Goal
	var due sql.NullString
	if err := scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &due); err != nil {
		return core.Goal{}, err
	}
	if due.Valid && due.String != "" {
		d, err := core.ParseDate(due.String)
		if err != nil {
			return core.Goal{}, fmt.Errorf("stored due date %q: %w", due.String, err)
		}
		g.DueDate = d
	}
	return g, nil
}

func nullableDate(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.String()
}
