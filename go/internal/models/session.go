package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus defines the status of a game session.
type SessionStatus string

const (
	SessionStatusIdle    SessionStatus = "IDLE"
	SessionStatusRunning SessionStatus = "RUNNING"
	SessionStatusEnded   SessionStatus = "ENDED"
)

// Session represents one play-through of the click game, from start to
// end or restart. Remaining only moves while the session is running and
// only via the countdown tick.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	Duration  time.Duration `json:"duration"`
	Remaining time.Duration `json:"remaining"`
	Clicks    int           `json:"clicks"`
	Status    SessionStatus `json:"status"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
}
