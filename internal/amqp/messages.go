package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Actions carried by an EntityEventMessage.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionPatched = "patched"
	ActionDeleted = "deleted"
)

// EntityEventMessage announces a successful write against the remote API.
// It carries only the identity of the record; consumers fetch the record
// themselves when they need it.
type EntityEventMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntityEventMessage creates a message stamped with the current time
func NewEntityEventMessage(entity, action string, id int64) *EntityEventMessage {
	return &EntityEventMessage{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntityEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntityEventMessageFromJSON decodes and checks a message
func EntityEventMessageFromJSON(data []byte) (*EntityEventMessage, error) {
	var msg EntityEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" {
		return nil, fmt.Errorf("entity event without entity")
	}
	switch msg.Action {
	case ActionCreated, ActionUpdated, ActionPatched, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown entity event action %q", msg.Action)
	}
	return &msg, nil
}
