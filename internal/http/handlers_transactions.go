package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"finans/internal/core"
	"finans/internal/log"
)

// transactionRequest carries the client-supplied transaction fields.
// Amount is a pointer so a missing amount and an explicit zero can be
// told apart.
type transactionRequest struct {
	UserID   int64    `json:"user_id"`
	Category string   `json:"category"`
	Amount   *float64 `json:"amount"`
	Date     string   `json:"date"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	txns, err := s.store.ListTransactions(r.Context(), userID)
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to list transactions",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(txns))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.UserID <= 0 || req.Category == "" || req.Amount == nil {
		writeError(w, http.StatusBadRequest, msgTransactionFieldsRequired)
		return
	}

	date := core.Today()
	if req.Date != "" {
		parsed, err := core.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidDate)
			return
		}
		date = parsed
	}

	created, err := s.transactions.CreateTransaction(r.Context(), core.Transaction{
		UserID:   req.UserID,
		Category: req.Category,
		Amount:   *req.Amount,
		Date:     date,
	})
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to create transaction",
			log.FieldUserID, req.UserID,
			log.FieldCategory, req.Category,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	s.invalidateAnalytics(created.UserID)

	fields := log.NewFields().
		WithTransaction(created.ID, created.UserID, created.Category, created.Amount).
		WithOperation(log.OpCreate)
	reqLog(r).InfoContext(r.Context(), "Transaction created", fields.ToSlice()...)

	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateTransaction rewrites the fields present in the body and
// keeps the rest, so a partial body no longer blanks omitted columns.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	txnID, ok := pathID(r, "txnID")
	if !ok {
		writeError(w, http.StatusNotFound, msgTransactionNotFound)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	txn, err := s.store.GetTransaction(r.Context(), txnID, req.UserID)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgTransactionNotFound)
		return
	}
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to load transaction",
			log.FieldTransactionID, txnID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if req.Category != "" {
		txn.Category = req.Category
	}
	if req.Amount != nil {
		txn.Amount = *req.Amount
	}
	if req.Date != "" {
		parsed, err := core.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidDate)
			return
		}
		txn.Date = parsed
	}

	updated, err := s.transactions.UpdateTransaction(r.Context(), txn)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgTransactionNotFound)
		return
	}
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to update transaction",
			log.FieldTransactionID, txnID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	s.invalidateAnalytics(req.UserID)

	// The update reply never included user_id.
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       updated.ID,
		"category": updated.Category,
		"amount":   updated.Amount,
		"date":     updated.Date,
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	txnID, ok := pathID(r, "txnID")
	if !ok {
		writeError(w, http.StatusNotFound, msgTransactionNotFound)
		return
	}

	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	err = s.transactions.DeleteTransaction(r.Context(), txnID, userID)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgTransactionNotFound)
		return
	}
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to delete transaction",
			log.FieldTransactionID, txnID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	s.invalidateAnalytics(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	summary, err := s.store.CategorySummary(r.Context(), userID)
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to summarize transactions",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if summary == nil {
		summary = core.CategorySummary{}
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	months, err := s.store.MonthlySummary(r.Context(), userID)
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to build monthly summary",
			log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(months))
}
