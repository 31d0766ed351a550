package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExpenseEventMessage is a lightweight expense lifecycle notification.
// Consumers fetch the full expense from the database; deleted expenses
// simply come back not found.
type ExpenseEventMessage struct {
	ExpenseID uuid.UUID `json:"expenseId"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEventMessage(action string, ownerID, expenseID uuid.UUID) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		ExpenseID: expenseID,
		OwnerID:   ownerID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON creates a message from JSON bytes
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
