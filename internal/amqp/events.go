package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Actions carried by a TransactionEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent notifies listeners that a user's transaction set
// changed and any derived numbers (budget status, forecasts) are stale.
type TransactionEvent struct {
	EventID       string    `json:"event_id"`
	UserID        int64     `json:"user_id"`
	TransactionID int64     `json:"transaction_id"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(action string, userID, transactionID int64) *TransactionEvent {
	return &TransactionEvent{
		EventID:       uuid.NewString(),
		UserID:        userID,
		TransactionID: transactionID,
		Action:        action,
		Timestamp:     time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction event: %w", err)
	}
	return data, nil
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var event TransactionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal transaction event: %w", err)
	}
	return &event, nil
}
