package services

import (
	"context"
	"fmt"
	"log/slog"

	"finans/internal/amqp"
	"finans/internal/core"
	"finans/internal/storage"
)

// EventPublisher publishes transaction events. *amqp.Client satisfies
// it; tests substitute a fake.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService orchestrates transaction writes: SQLite is the
// source of truth, the event publish is best-effort on top.
type TransactionService struct {
	storage *storage.SQLiteRepository
	events  EventPublisher
}

func NewTransactionService(storage *storage.SQLiteRepository, events EventPublisher) *TransactionService {
	return &TransactionService{
		storage: storage,
		events:  events,
	}
}

// CreateTransaction saves a transaction locally and publishes a created event
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	// Non-blocking: the write already succeeded
	s.publishEvent(ctx, amqp.ActionCreated, created.UserID, created.ID)

	return created, nil
}

// UpdateTransaction rewrites a transaction and publishes an updated event
func (s *TransactionService) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	s.publishEvent(ctx, amqp.ActionUpdated, t.UserID, t.ID)

	return t, nil
}

// DeleteTransaction removes a transaction and publishes a deleted event
func (s *TransactionService) DeleteTransaction(ctx context.Context, id, userID int64) error {
	if err := s.storage.DeleteTransaction(ctx, id, userID); err != nil {
		return err
	}

	s.publishEvent(ctx, amqp.ActionDeleted, userID, id)

	return nil
}

func (s *TransactionService) publishEvent(ctx context.Context, action string, userID, transactionID int64) {
	if s.events == nil {
		slog.DebugContext(ctx, "Event publishing disabled, skipping", "action", action)
		return
	}

	event := amqp.NewTransactionEvent(action, userID, transactionID)
	if err := s.events.PublishTransactionEvent(ctx, event); err != nil {
		// Don't fail the request - the transaction is saved locally
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action,
			"transaction_id", transactionID,
			"user_id", userID,
			"error", err)
	}
}

// Close closes the underlying storage connection
func (s *TransactionService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close transaction service: %w", err)
		}
	}
	return nil
}
