package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finans/internal/analytics"
	"finans/internal/core"
	"finans/internal/log"
	"finans/internal/services"
)

// analyticsTimeout bounds history load plus simulation per request.
const analyticsTimeout = 7 * time.Second

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	ref := core.Today()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidDate)
			return
		}
		ref = parsed
	}

	key := forecastKey(userID, ref)
	if cached, found := s.forecastCache.Get(key); found {
		reqLog(r).DebugContext(r.Context(), "Forecast cache hit", log.FieldUserID, userID)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analyticsTimeout)
	defer cancel()

	txns, err := s.store.TransactionHistory(ctx, userID)
	if err != nil {
		reqLog(r).ErrorContext(ctx, "Failed to load transaction history",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	forecast, err := analytics.ComputeForecast(txns, ref, analytics.ForecastOptions{
		Simulations: s.simulations,
	})
	if errors.Is(err, analytics.ErrNoTransactions) {
		writeJSON(w, http.StatusOK, analytics.NoData())
		return
	}
	if err != nil {
		reqLog(r).ErrorContext(ctx, "Forecast computation failed",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	resp := analytics.FormatForecast(forecast)
	s.forecastCache.Set(key, resp)

	reqLog(r).InfoContext(ctx, "Forecast computed",
		log.FieldUserID, userID,
		log.FieldDate, ref.String(),
		"days_left", forecast.DaysLeft,
		"simulations", forecast.Simulations)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeeklyPattern(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	key := weeklyKey(userID)
	if cached, found := s.weeklyCache.Get(key); found {
		reqLog(r).DebugContext(r.Context(), "Weekly pattern cache hit", log.FieldUserID, userID)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analyticsTimeout)
	defer cancel()

	txns, err := s.store.TransactionHistory(ctx, userID)
	if err != nil {
		reqLog(r).ErrorContext(ctx, "Failed to load transaction history",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	pattern, err := analytics.ComputeWeeklyPattern(txns)
	if errors.Is(err, analytics.ErrNoTransactions) {
		writeJSON(w, http.StatusOK, analytics.NoData())
		return
	}
	if err != nil {
		reqLog(r).ErrorContext(ctx, "Weekly pattern computation failed",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	resp := analytics.FormatWeeklyPattern(pattern)
	s.weeklyCache.Set(key, resp)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleObservations(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	today := core.Today()

	statuses, err := s.store.BudgetStatuses(r.Context(), userID, today)
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to compute budget status",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	goals, err := s.store.ListGoals(r.Context(), userID)
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to list goals",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	observations := services.EvaluateBudgets(statuses)
	observations = append(observations, services.EvaluateGoals(goals, today)...)

	writeJSON(w, http.StatusOK, map[string]any{
		"observations": nonNil(observations),
		"count":        len(observations),
	})
}
