package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finans/internal/core"
	"finans/internal/log"
)

type goalRequest struct {
	UserID       int64    `json:"user_id"`
	Name         string   `json:"name"`
	TargetAmount *float64 `json:"target_amount"`
	DueDate      string   `json:"due_date"`
}

type contributionRequest struct {
	UserID int64    `json:"user_id"`
	Amount *float64 `json:"amount"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	goals, err := s.store.ListGoals(r.Context(), userID)
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to list goals",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(goals))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.UserID <= 0 || req.Name == "" || req.TargetAmount == nil {
		writeError(w, http.StatusBadRequest, msgGoalFieldsRequired)
		return
	}

	var dueDate core.Date
	if req.DueDate != "" {
		parsed, err := core.ParseDate(req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidDate)
			return
		}
		dueDate = parsed
	}

	created, err := s.store.CreateGoal(r.Context(), core.Goal{
		UserID:       req.UserID,
		Name:         req.Name,
		TargetAmount: *req.TargetAmount,
		DueDate:      dueDate,
	})
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to create goal",
			log.FieldUserID, req.UserID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleContributeToGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(r, "goalID")
	if !ok {
		writeError(w, http.StatusNotFound, msgGoalNotFound)
		return
	}

	var req contributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.UserID <= 0 || req.Amount == nil || *req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, msgContributionRequired)
		return
	}

	goal, err := s.store.ContributeToGoal(r.Context(), goalID, req.UserID, *req.Amount)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgGoalNotFound)
		return
	}
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to contribute to goal",
			log.FieldGoalID, goalID,
			log.FieldUserID, req.UserID,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":             goal.ID,
		"current_amount": goal.CurrentAmount,
		"message":        msgContributionAdded,
	})
}
