package amqp

import (
	"encoding/json"
	"time"

	"dompet/internal/core"
)

// ChangeMessage is the wire form of a core.ChangeEvent. It names what
// changed; consumers refetch the collection instead of applying a diff.
type ChangeMessage struct {
	UserID    string    `json:"user_id"`
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(ev core.ChangeEvent) *ChangeMessage {
	return &ChangeMessage{
		UserID:    ev.UserID,
		Entity:    ev.Entity,
		Op:        ev.Op,
		ID:        ev.ID,
		Timestamp: time.Now(),
	}
}

// Event converts the message back to the domain event.
func (m *ChangeMessage) Event() core.ChangeEvent {
	return core.ChangeEvent{UserID: m.UserID, Entity: m.Entity, Op: m.Op, ID: m.ID}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
