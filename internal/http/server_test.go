package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"finans/internal/core"
	"finans/internal/log"
)

// fakeStore is an in-memory Store. The fakeWriter mutates the same
// maps so read-after-write tests behave like the real repository.
type fakeStore struct {
	transactions map[int64][]core.Transaction
	budgets      map[int64][]core.Budget
	statuses     map[int64][]core.BudgetStatus
	goals        map[int64][]core.Goal
	summaries    map[int64]core.CategorySummary
	months       map[int64][]core.MonthTotal

	nextID       int64
	historyCalls int
	seedCalls    int

	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		transactions: make(map[int64][]core.Transaction),
		budgets:      make(map[int64][]core.Budget),
		statuses:     make(map[int64][]core.BudgetStatus),
		goals:        make(map[int64][]core.Goal),
		summaries:    make(map[int64]core.CategorySummary),
		months:       make(map[int64][]core.MonthTotal),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.transactions[userID], nil
}

func (f *fakeStore) GetTransaction(ctx context.Context, id, userID int64) (core.Transaction, error) {
	if f.failWith != nil {
		return core.Transaction{}, f.failWith
	}
	for _, t := range f.transactions[userID] {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeStore) TransactionHistory(ctx context.Context, userID int64) ([]core.Transaction, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.historyCalls++
	history := append([]core.Transaction(nil), f.transactions[userID]...)
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date.Time)
	})
	return history, nil
}

func (f *fakeStore) CategorySummary(ctx context.Context, userID int64) (core.CategorySummary, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.summaries[userID], nil
}

func (f *fakeStore) MonthlySummary(ctx context.Context, userID int64) ([]core.MonthTotal, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.months[userID], nil
}

func (f *fakeStore) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if f.failWith != nil {
		return core.Budget{}, f.failWith
	}
	for _, existing := range f.budgets[b.UserID] {
		if existing.Category == b.Category {
			return core.Budget{}, core.ErrDuplicateBudget
		}
	}
	b.ID = f.id()
	f.budgets[b.UserID] = append(f.budgets[b.UserID], b)
	return b, nil
}

func (f *fakeStore) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.budgets[userID], nil
}

func (f *fakeStore) BudgetStatuses(ctx context.Context, userID int64, ref core.Date) ([]core.BudgetStatus, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.statuses[userID], nil
}

func (f *fakeStore) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if f.failWith != nil {
		return core.Goal{}, f.failWith
	}
	g.ID = f.id()
	f.goals[g.UserID] = append(f.goals[g.UserID], g)
	return g, nil
}

func (f *fakeStore) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.goals[userID], nil
}

func (f *fakeStore) ContributeToGoal(ctx context.Context, id, userID int64, amount float64) (core.Goal, error) {
	if f.failWith != nil {
		return core.Goal{}, f.failWith
	}
	goals := f.goals[userID]
	for i, g := range goals {
		if g.ID == id {
			g.CurrentAmount = min(g.CurrentAmount+amount, g.TargetAmount)
			goals[i] = g
			return g, nil
		}
	}
	return core.Goal{}, core.ErrNotFound
}

func (f *fakeStore) SeedSampleData(ctx context.Context) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.seedCalls++
	return 1, nil
}

// fakeWriter implements TransactionWriter against the same fakeStore.
type fakeWriter struct {
	store    *fakeStore
	failWith error
}

func (f *fakeWriter) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if f.failWith != nil {
		return core.Transaction{}, f.failWith
	}
	t.ID = f.store.id()
	f.store.transactions[t.UserID] = append(f.store.transactions[t.UserID], t)
	return t, nil
}

func (f *fakeWriter) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if f.failWith != nil {
		return core.Transaction{}, f.failWith
	}
	txns := f.store.transactions[t.UserID]
	for i, existing := range txns {
		if existing.ID == t.ID {
			txns[i] = t
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeWriter) DeleteTransaction(ctx context.Context, id, userID int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	txns := f.store.transactions[userID]
	for i, existing := range txns {
		if existing.ID == id {
			f.store.transactions[userID] = append(txns[:i], txns[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func quietLogger() *log.Logger {
	return log.New(log.Config{
		Level:     slog.LevelError,
		Component: log.ComponentHTTP,
		Handler:   slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}),
	})
}

func newTestServer(t *testing.T, store *fakeStore) *Server {
	t.Helper()
	s := NewServer(":0", store, &fakeWriter{store: store}, quietLogger(), 200)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s
}

func doRequest(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func assertErrorMessage(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (body %q)", status, rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] != message {
		t.Errorf("expected error %q, got %q", message, body["error"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	rec := doRequest(s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz: got %d %q", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Errorf("readyz: got %d %q", rec.Code, rec.Body.String())
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	rec := doRequest(s, http.MethodGet, "/healthz", nil)

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("header %s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy header missing")
	}
}

func TestRateLimitOnlyThrottlesWrites(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store)

	// Exhaust the per-minute write budget from one client.
	var limited bool
	for i := 0; i < 70; i++ {
		rec := doRequest(s, http.MethodPost, "/api/transactions", map[string]any{
			"user_id": 1, "category": "Mad", "amount": 10.0, "date": "2025-05-01",
		})
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			assertErrorMessage(t, rec, http.StatusTooManyRequests, msgRateLimited)
			if rec.Header().Get("Retry-After") != "60" {
				t.Errorf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
			}
			break
		}
	}
	if !limited {
		t.Fatal("write requests were never rate limited")
	}

	// Reads from the same client still pass.
	rec := doRequest(s, http.MethodGet, "/api/transactions/1", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("read request should bypass the limiter, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	rec := doRequest(s, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	rec := doRequest(s, http.MethodDelete, "/api/budgets/1", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for unsupported method, got %d", rec.Code)
	}
}

func TestSeedEndpoint(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store)

	// Warm the weekly cache so the reseed has something to drop.
	store.transactions[1] = []core.Transaction{
		{ID: 1, UserID: 1, Category: "Mad", Amount: 100, Date: core.NewDate(2025, 5, 1)},
	}
	if rec := doRequest(s, http.MethodGet, "/api/weekly_pattern/1", nil); rec.Code != http.StatusOK {
		t.Fatalf("warmup request failed: %d", rec.Code)
	}
	if s.weeklyCache.Size() == 0 {
		t.Fatal("expected warm weekly cache")
	}

	rec := doRequest(s, http.MethodPost, "/api/seed", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed failed: %d %s", rec.Code, rec.Body.String())
	}

	body := decodeBody[map[string]any](t, rec)
	if body["status"] != "seeded" {
		t.Errorf("expected status seeded, got %v", body["status"])
	}
	if body["user_id"] != float64(1) {
		t.Errorf("expected user_id 1, got %v", body["user_id"])
	}
	if body["message"] != msgSeeded {
		t.Errorf("expected message %q, got %v", msgSeeded, body["message"])
	}
	if store.seedCalls != 1 {
		t.Errorf("expected 1 seed call, got %d", store.seedCalls)
	}
	if s.weeklyCache.Size() != 0 || s.forecastCache.Size() != 0 {
		t.Error("seed should clear the analytics caches")
	}
}

func TestSeedEndpointFailure(t *testing.T) {
	store := newFakeStore()
	store.failWith = fmt.Errorf("disk full")
	s := newTestServer(t, store)

	rec := doRequest(s, http.MethodPost, "/api/seed", nil)
	assertErrorMessage(t, rec, http.StatusInternalServerError, msgInternalError)
}
