package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finans/internal/core"
	"finans/internal/log"
)

type budgetRequest struct {
	UserID       int64    `json:"user_id"`
	Category     string   `json:"category"`
	MonthlyLimit *float64 `json:"monthly_limit"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	budgets, err := s.store.ListBudgets(r.Context(), userID)
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to list budgets",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(budgets))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.UserID <= 0 || req.Category == "" || req.MonthlyLimit == nil {
		writeError(w, http.StatusBadRequest, msgBudgetFieldsRequired)
		return
	}

	created, err := s.store.CreateBudget(r.Context(), core.Budget{
		UserID:       req.UserID,
		Category:     req.Category,
		MonthlyLimit: *req.MonthlyLimit,
	})
	if errors.Is(err, core.ErrDuplicateBudget) {
		writeError(w, http.StatusConflict, msgBudgetExists)
		return
	}
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to create budget",
			log.FieldUserID, req.UserID,
			log.FieldCategory, req.Category,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	statuses, err := s.store.BudgetStatuses(r.Context(), userID, core.Today())
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to compute budget status",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(statuses))
}
