package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/clickrush/go/internal/game/session"
)

// GameEvent is the envelope for everything pushed to browser clients.
type GameEvent struct {
	ID        string          `json:"id"`        // Event UUID
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// EventType represents the type of game event.
type EventType string

const (
	EventTypeSnapshot     EventType = "Snapshot"
	EventTypeSessionEnded EventType = "SessionEnded"
)

// ClientCommand is a message received from a browser client. The client
// is responsible for only firing on real, discrete user actions (pointer
// activation or designated key presses) and for suppressing delivery
// while focus is on unrelated controls.
type ClientCommand struct {
	Action      string  `json:"action"`
	DurationSec float64 `json:"duration_sec,omitempty"`
}

// Client command actions.
const (
	ActionStart       = "start"
	ActionClick       = "click"
	ActionEnd         = "end"
	ActionRestart     = "restart"
	ActionSetDuration = "set_duration"
)

// NewSnapshotEvent wraps a display snapshot in an event envelope.
func NewSnapshotEvent(snap session.Snapshot) (*GameEvent, error) {
	return newEvent(EventTypeSnapshot, snap)
}

// NewSessionEndedEvent wraps a session result in an event envelope.
func NewSessionEndedEvent(res session.Result) (*GameEvent, error) {
	return newEvent(EventTypeSessionEnded, res)
}

func newEvent(eventType EventType, payload any) (*GameEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &GameEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}, nil
}

// ParseClientCommand decodes an inbound client message.
func ParseClientCommand(data []byte) (ClientCommand, error) {
	var cmd ClientCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return ClientCommand{}, fmt.Errorf("failed to decode client command: %w", err)
	}
	return cmd, nil
}
