package events

import (
	"time"
)

// SessionEndedPayload is published when a session finishes, for
// downstream consumers such as analytics. The game itself never reads
// these back.
type SessionEndedPayload struct {
	SessionID      string    `json:"session_id"`
	DurationSec    float64   `json:"duration_sec"`
	FinalScore     int       `json:"final_score"`
	HighScore      int       `json:"high_score"`
	IsNewHighScore bool      `json:"is_new_high_score"`
	EndedAt        time.Time `json:"ended_at"`
}

// EventTypeSessionEnded is the event type used on the wire.
const EventTypeSessionEnded = "session_ended"
