package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finans/internal/amqp"
	"finans/internal/core"
	"finans/internal/services"
)

// AlertStore is the read surface the alert worker needs.
// *storage.SQLiteRepository satisfies it.
type AlertStore interface {
	BudgetStatuses(ctx context.Context, userID int64, ref core.Date) ([]core.BudgetStatus, error)
	ListGoals(ctx context.Context, userID int64) ([]core.Goal, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// AlertWorker re-evaluates a user's budgets and goals whenever their
// transactions change and surfaces the findings as structured log
// alerts. A periodic full sweep covers users whose events were lost.
type AlertWorker struct {
	store AlertStore
	now   func() core.Date
}

func NewAlertWorker(store AlertStore) *AlertWorker {
	return &AlertWorker{
		store: store,
		now:   core.Today,
	}
}

// HandleTransactionEvent processes a single transaction event from AMQP
func (w *AlertWorker) HandleTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"event_id", event.EventID,
		"user_id", event.UserID,
		"transaction_id", event.TransactionID,
		"action", event.Action)

	if err := w.EvaluateUser(ctx, event.UserID); err != nil {
		return fmt.Errorf("evaluate user %d: %w", event.UserID, err)
	}
	return nil
}

// SweepAllUsers evaluates every known user. This is the backup path in
// case AMQP events are lost.
func (w *AlertWorker) SweepAllUsers(ctx context.Context) error {
	userIDs, err := w.store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list user ids: %w", err)
	}

	if len(userIDs) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Sweeping users", "count", len(userIDs))

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.EvaluateUser(ctx, userID); err != nil {
			slog.ErrorContext(ctx, "Failed to evaluate user", "user_id", userID, "error", err)
			continue
		}
	}

	return nil
}

// EvaluateUser loads one user's current budget statuses and goals,
// runs the observation analysis, and logs each finding. Warnings cover
// exceeded or nearly exhausted budgets and deadline trouble.
func (w *AlertWorker) EvaluateUser(ctx context.Context, userID int64) error {
	today := w.now()

	statuses, err := w.store.BudgetStatuses(ctx, userID, today)
	if err != nil {
		return fmt.Errorf("budget statuses: %w", err)
	}

	goals, err := w.store.ListGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}

	observations := services.EvaluateBudgets(statuses)
	observations = append(observations, services.EvaluateGoals(goals, today)...)

	warnings := 0
	for _, o := range observations {
		if o.Severity == services.SeverityWarning {
			warnings++
			slog.WarnContext(ctx, "Financial alert",
				"user_id", userID,
				"kind", o.Kind,
				"subject", o.Subject,
				"message", o.Message)
		} else {
			slog.DebugContext(ctx, "Financial observation",
				"user_id", userID,
				"kind", o.Kind,
				"subject", o.Subject)
		}
	}

	slog.InfoContext(ctx, "User evaluated",
		"user_id", userID,
		"observations", len(observations),
		"warnings", warnings)

	return nil
}
