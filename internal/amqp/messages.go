package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by expense event messages.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEventMessage is the lightweight message published after every
// expense mutation. It carries only the id and the action; consumers fetch
// whatever else they need from the store.
type ExpenseEventMessage struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEventMessage builds a message stamped with the current time.
func NewExpenseEventMessage(id int64, action string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON parses a message from JSON bytes.
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
