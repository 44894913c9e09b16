package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finans/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finans.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: 1, Category: "Mad", Amount: 150, Date: core.NewDate(2025, 4, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: 1, Category: "Transport", Amount: 75.5, Date: core.NewDate(2025, 4, 3),
	}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	txns, err := repo.ListTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	// Newest first.
	if txns[0].Category != "Transport" || txns[1].Category != "Mad" {
		t.Fatalf("unexpected order: %v, %v", txns[0].Category, txns[1].Category)
	}
	if !txns[1].Date.Equal(core.NewDate(2025, 4, 1).Time) {
		t.Fatalf("date round trip failed: %v", txns[1].Date)
	}

	created.Amount = 175
	created.Category = "Shopping"
	if err := repo.UpdateTransaction(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Updates scoped to another user must not land.
	foreign := created
	foreign.UserID = 99
	if err := repo.UpdateTransaction(ctx, foreign); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.DeleteTransaction(ctx, created.ID, 99); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, created.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	txns, err = repo.ListTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction left, got %d", len(txns))
	}
}

func TestSummaries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{UserID: 1, Category: "Mad", Amount: 100, Date: core.NewDate(2025, 4, 1)},
		{UserID: 1, Category: "Mad", Amount: 50, Date: core.NewDate(2025, 5, 2)},
		{UserID: 1, Category: "Transport", Amount: 30, Date: core.NewDate(2025, 4, 10)},
		{UserID: 2, Category: "Mad", Amount: 999, Date: core.NewDate(2025, 4, 1)}, // other user
	}
	if err := repo.InsertTransactions(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	summary, err := repo.CategorySummary(ctx, 1)
	if err != nil {
		t.Fatalf("category summary: %v", err)
	}
	if summary["Mad"] != 150 || summary["Transport"] != 30 {
		t.Fatalf("unexpected summary: %v", summary)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(summary))
	}

	months, err := repo.MonthlySummary(ctx, 1)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}
	if months[0].Month != "2025-04" || months[0].TotalSpending != 130 {
		t.Fatalf("unexpected first month: %+v", months[0])
	}
	if months[1].Month != "2025-05" || months[1].TotalSpending != 50 {
		t.Fatalf("unexpected second month: %+v", months[1])
	}

	spent, err := repo.SpentByCategory(ctx, 1, core.NewDate(2025, 4, 1), core.NewDate(2025, 4, 30))
	if err != nil {
		t.Fatalf("spent by category: %v", err)
	}
	if spent["Mad"] != 100 || spent["Transport"] != 30 {
		t.Fatalf("unexpected spent map: %v", spent)
	}
}

func TestBudgetUniquePerCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b, err := repo.CreateBudget(ctx, core.Budget{UserID: 1, Category: "Mad", MonthlyLimit: 300})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if b.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	_, err = repo.CreateBudget(ctx, core.Budget{UserID: 1, Category: "Mad", MonthlyLimit: 500})
	if !errors.Is(err, core.ErrDuplicateBudget) {
		t.Fatalf("expected ErrDuplicateBudget, got %v", err)
	}

	// Same category for another user is fine.
	if _, err := repo.CreateBudget(ctx, core.Budget{UserID: 2, Category: "Mad", MonthlyLimit: 500}); err != nil {
		t.Fatalf("create for other user: %v", err)
	}

	budgets, err := repo.ListBudgets(ctx, 1)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].MonthlyLimit != 300 {
		t.Fatalf("unexpected budgets: %+v", budgets)
	}
}

func TestGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g, err := repo.CreateGoal(ctx, core.Goal{
		UserID: 1, Name: "Ny Laptop", TargetAmount: 1500,
		DueDate: core.NewDate(2025, 8, 31),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	// Optional due date stored as NULL round-trips as zero.
	noDue, err := repo.CreateGoal(ctx, core.Goal{UserID: 1, Name: "Ferie", TargetAmount: 5000})
	if err != nil {
		t.Fatalf("create goal without due date: %v", err)
	}

	goals, err := repo.ListGoals(ctx, 1)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(goals))
	}

	fetched, err := repo.GetGoal(ctx, g.ID, 1)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if fetched.DueDate.IsEmpty() || !fetched.DueDate.Equal(core.NewDate(2025, 8, 31).Time) {
		t.Fatalf("due date round trip failed: %v", fetched.DueDate)
	}

	fetched, err = repo.GetGoal(ctx, noDue.ID, 1)
	if err != nil {
		t.Fatalf("get goal without due date: %v", err)
	}
	if !fetched.DueDate.IsEmpty() {
		t.Fatalf("expected zero due date, got %v", fetched.DueDate)
	}

	if _, err := repo.GetGoal(ctx, g.ID, 99); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign get, got %v", err)
	}

	updated, err := repo.ContributeToGoal(ctx, g.ID, 1, 250)
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if updated.CurrentAmount != 250 {
		t.Fatalf("expected 250 saved, got %v", updated.CurrentAmount)
	}

	// Contributions clamp at the target amount.
	updated, err = repo.ContributeToGoal(ctx, g.ID, 1, 10000)
	if err != nil {
		t.Fatalf("contribute past target: %v", err)
	}
	if updated.CurrentAmount != 1500 {
		t.Fatalf("expected clamp at 1500, got %v", updated.CurrentAmount)
	}

	if _, err := repo.ContributeToGoal(ctx, g.ID, 99, 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign contribute, got %v", err)
	}
}

func TestGetTransactionScoped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: 1, Category: "Mad", Amount: 42.5, Date: core.NewDate(2025, 6, 15),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetTransaction(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Category != "Mad" || got.Amount != 42.5 || got.Date.String() != "2025-06-15" {
		t.Fatalf("unexpected transaction: %+v", got)
	}

	if _, err := repo.GetTransaction(ctx, created.ID, 99); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign get, got %v", err)
	}
	if _, err := repo.GetTransaction(ctx, created.ID+1000, 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestTransactionHistoryOldestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{UserID: 1, Category: "Mad", Amount: 3, Date: core.NewDate(2025, 5, 10)},
		{UserID: 1, Category: "Mad", Amount: 1, Date: core.NewDate(2025, 4, 1)},
		{UserID: 1, Category: "Mad", Amount: 2, Date: core.NewDate(2025, 4, 20)},
	}
	if err := repo.InsertTransactions(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	hist, err := repo.TransactionHistory(ctx, 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(hist))
	}
	for i, want := range []float64{1, 2, 3} {
		if hist[i].Amount != want {
			t.Fatalf("position %d: got amount %v, want %v", i, hist[i].Amount, want)
		}
	}
}

func TestBudgetStatuses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, b := range []core.Budget{
		{UserID: 1, Category: "Mad", MonthlyLimit: 300},
		{UserID: 1, Category: "Transport", MonthlyLimit: 200},
	} {
		if _, err := repo.CreateBudget(ctx, b); err != nil {
			t.Fatalf("create budget: %v", err)
		}
	}
	seed := []core.Transaction{
		{UserID: 1, Category: "Mad", Amount: 120, Date: core.NewDate(2025, 5, 1)},
		{UserID: 1, Category: "Mad", Amount: 210, Date: core.NewDate(2025, 5, 13)},
		// Outside the reference month, must not count.
		{UserID: 1, Category: "Mad", Amount: 500, Date: core.NewDate(2025, 4, 10)},
		// Unbudgeted category, must not appear.
		{UserID: 1, Category: "Shopping", Amount: 50, Date: core.NewDate(2025, 5, 2)},
	}
	if err := repo.InsertTransactions(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	statuses, err := repo.BudgetStatuses(ctx, 1, core.NewDate(2025, 5, 20))
	if err != nil {
		t.Fatalf("budget statuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Category != "Mad" || statuses[0].Spent != 330 || statuses[0].Remaining != -30 {
		t.Fatalf("unexpected Mad status: %+v", statuses[0])
	}
	// No spending in the month yet: spent 0, full limit remaining.
	if statuses[1].Category != "Transport" || statuses[1].Spent != 0 || statuses[1].Remaining != 200 {
		t.Fatalf("unexpected Transport status: %+v", statuses[1])
	}
}

func TestListUserIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateTransaction(ctx, core.Transaction{UserID: 3, Category: "Mad", Amount: 1, Date: core.NewDate(2025, 4, 1)}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if _, err := repo.CreateBudget(ctx, core.Budget{UserID: 1, Category: "Mad", MonthlyLimit: 300}); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if _, err := repo.CreateGoal(ctx, core.Goal{UserID: 2, Name: "Ferie", TargetAmount: 5000}); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	// Same user in two tables counts once.
	if _, err := repo.CreateGoal(ctx, core.Goal{UserID: 3, Name: "Ny Laptop", TargetAmount: 1500}); err != nil {
		t.Fatalf("create second goal: %v", err)
	}

	ids, err := repo.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("list user ids: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestSeedSampleData(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Pre-existing rows must be wiped by the seed.
	if _, err := repo.CreateTransaction(ctx, core.Transaction{UserID: 7, Category: "Gammel", Amount: 1, Date: core.NewDate(2024, 1, 1)}); err != nil {
		t.Fatalf("create stale transaction: %v", err)
	}

	userID, err := repo.SeedSampleData(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if userID != 1 {
		t.Fatalf("expected seed user 1, got %d", userID)
	}

	txns, err := repo.ListTransactions(ctx, userID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 10 {
		t.Fatalf("expected 10 seeded transactions, got %d", len(txns))
	}
	if stale, err := repo.ListTransactions(ctx, 7); err != nil || len(stale) != 0 {
		t.Fatalf("stale rows survived the seed: %v, %v", stale, err)
	}

	budgets, err := repo.ListBudgets(ctx, userID)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 3 {
		t.Fatalf("expected 3 seeded budgets, got %d", len(budgets))
	}

	goals, err := repo.ListGoals(ctx, userID)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("expected 2 seeded goals, got %d", len(goals))
	}
	if goals[0].Name != "Ny Laptop" || goals[0].CurrentAmount != 250 {
		t.Fatalf("unexpected first goal: %+v", goals[0])
	}

	// May's Mad spending exceeds its 300 budget in the fixture set.
	statuses, err := repo.BudgetStatuses(ctx, userID, core.NewDate(2025, 5, 31))
	if err != nil {
		t.Fatalf("budget statuses: %v", err)
	}
	if statuses[0].Category != "Mad" || statuses[0].Remaining != -30 {
		t.Fatalf("expected Mad over budget by 30, got %+v", statuses[0])
	}
}

func TestResetAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateTransaction(ctx, core.Transaction{UserID: 1, Category: "Mad", Amount: 1, Date: core.NewDate(2025, 4, 1)}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if _, err := repo.CreateBudget(ctx, core.Budget{UserID: 1, Category: "Mad", MonthlyLimit: 300}); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if _, err := repo.CreateGoal(ctx, core.Goal{UserID: 1, Name: "Ferie", TargetAmount: 5000}); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	if err := repo.ResetAll(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	txns, err := repo.ListTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	budgets, err := repo.ListBudgets(ctx, 1)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	goals, err := repo.ListGoals(ctx, 1)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(txns)+len(budgets)+len(goals) != 0 {
		t.Fatalf("expected empty database, got %d/%d/%d rows", len(txns), len(budgets), len(goals))
	}
}
