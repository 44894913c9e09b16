// Package http serves the JSON API: transaction, budget and goal CRUD
// plus the spending analytics endpoints (forecast, weekly pattern,
// observations).
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"finans/internal/analytics"
	"finans/internal/cache"
	"finans/internal/core"
	"finans/internal/log"
	"finans/internal/middleware/ratelimit"
	"finans/internal/middleware/security"
	"finans/internal/middleware/trace"
)

// Store is the storage surface the API reads from and writes budgets,
// goals and seed data to. *storage.SQLiteRepository satisfies it.
type Store interface {
	ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id, userID int64) (core.Transaction, error)
	TransactionHistory(ctx context.Context, userID int64) ([]core.Transaction, error)
	CategorySummary(ctx context.Context, userID int64) (core.CategorySummary, error)
	MonthlySummary(ctx context.Context, userID int64) ([]core.MonthTotal, error)

	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
	BudgetStatuses(ctx context.Context, userID int64, ref core.Date) ([]core.BudgetStatus, error)

	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	ListGoals(ctx context.Context, userID int64) ([]core.Goal, error)
	ContributeToGoal(ctx context.Context, id, userID int64, amount float64) (core.Goal, error)

	SeedSampleData(ctx context.Context) (int64, error)
}

// TransactionWriter mutates transactions. *services.TransactionService
// satisfies it and publishes change events on top of the writes.
type TransactionWriter interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID int64) error
}

type Server struct {
	http.Server

	store        Store
	transactions TransactionWriter
	logger       *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector

	// simulations bounds the Monte Carlo work per forecast request.
	simulations int

	forecastCache *cache.LRUCache[analytics.ForecastResponse]
	weeklyCache   *cache.LRUCache[analytics.WeeklyPatternResponse]
	caches        *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. simulations <= 0 falls back to the analytics default.
func NewServer(addr string, store Store, transactions TransactionWriter, logger *log.Logger, simulations int) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if simulations <= 0 {
		simulations = analytics.DefaultSimulations
	}

	s := &Server{
		store:         store,
		transactions:  transactions,
		logger:        logger.WithComponent(log.ComponentHTTP),
		limiter:       ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:      security.NewDetector(),
		simulations:   simulations,
		forecastCache: cache.NewLRUCache[analytics.ForecastResponse](100, 5*time.Minute),
		weeklyCache:   cache.NewLRUCache[analytics.WeeklyPatternResponse](100, 5*time.Minute),
		caches:        cache.NewManager(),
	}

	s.caches.Register(s.forecastCache)
	s.caches.Register(s.weeklyCache)
	s.caches.StartCleanup(10 * time.Minute)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/transactions/{userID:[0-9]+}", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{txnID:[0-9]+}", s.handleUpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{txnID:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)
	api.HandleFunc("/transactions/summary/{userID:[0-9]+}", s.handleCategorySummary).Methods(http.MethodGet)
	api.HandleFunc("/transactions/monthly_summary/{userID:[0-9]+}", s.handleMonthlySummary).Methods(http.MethodGet)

	api.HandleFunc("/budgets/{userID:[0-9]+}", s.handleListBudgets).Methods(http.MethodGet)
	api.HandleFunc("/budgets", s.handleCreateBudget).Methods(http.MethodPost)
	api.HandleFunc("/budgets/status/{userID:[0-9]+}", s.handleBudgetStatus).Methods(http.MethodGet)

	api.HandleFunc("/goals/{userID:[0-9]+}", s.handleListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/{goalID:[0-9]+}/contribute", s.handleContributeToGoal).Methods(http.MethodPut)

	api.HandleFunc("/forecast/{userID:[0-9]+}", s.handleForecast).Methods(http.MethodGet)
	api.HandleFunc("/weekly_pattern/{userID:[0-9]+}", s.handleWeeklyPattern).Methods(http.MethodGet)
	api.HandleFunc("/observations/{userID:[0-9]+}", s.handleObservations).Methods(http.MethodGet)

	api.HandleFunc("/seed", s.handleSeed).Methods(http.MethodPost)

	// Outermost first: request tracing, security headers, suspicion
	// scan, rate limiting on the mutating methods, then the
	// request-scoped logger the handlers pull out of the context.
	traceMW := trace.NewMiddleware(s.detector.ExtractClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limitMW := s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)

	r.Use(traceMW.Middleware)
	r.Use(headersMW.Middleware)
	r.Use(s.scanRequest)
	r.Use(writeMethodsOnly(limitMW))
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	}))

	return r
}

// reqLog returns the request-scoped logger, which carries the request
// id alongside the server's component field.
func reqLog(r *http.Request) *log.Logger {
	return log.FromContext(r.Context())
}

// writeMethodsOnly applies mw to mutating requests and passes reads
// straight through.
func writeMethodsOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
				limited.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// scanRequest logs requests matching known probe patterns. Detection
// never blocks; legitimate data can look odd.
func (s *Server) scanRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			fields := log.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
				WithClientIP(s.detector.ExtractClientIP(r))
			s.logger.WarnContext(r.Context(), "Suspicious request detected", fields.ToSlice()...)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	fields := log.NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithClientIP(s.detector.ExtractClientIP(r))
	s.logger.WarnContext(r.Context(), "Rate limit exceeded", fields.ToSlice()...)
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msgRateLimited)
}

// Shutdown stops the background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// pathID reads a positive integer path variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func forecastKey(userID int64, ref core.Date) string {
	return "forecast:" + strconv.FormatInt(userID, 10) + ":" + ref.String()
}

func weeklyKey(userID int64) string {
	return "weekly:" + strconv.FormatInt(userID, 10)
}

// invalidateAnalytics drops the cached analytics entries a transaction
// write makes stale. Forecasts requested for explicit past dates age
// out via TTL instead.
func (s *Server) invalidateAnalytics(userID int64) {
	s.forecastCache.Delete(forecastKey(userID, core.Today()))
	s.weeklyCache.Delete(weeklyKey(userID))
}
