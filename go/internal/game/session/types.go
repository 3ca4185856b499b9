package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/clickrush/go/internal/models"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) clockwork.Ticker
}

// DurationSource supplies the operator-selected round length. It is read
// at Start and Restart only; a running session keeps the duration it was
// started with.
type DurationSource interface {
	CurrentDuration() time.Duration
}

// HighScores is what the controller needs from high score storage.
// Both operations are total: a failed read reports 0 and a failed write
// is dropped by the implementation.
type HighScores interface {
	Read(ctx context.Context) int
	Write(ctx context.Context, score int)
}

// Sink receives display updates on every state change. Implementations
// are pure consumers and must not call back into the controller.
type Sink interface {
	PublishSnapshot(snap Snapshot)
	PublishResult(res Result)
}

// Snapshot is the display tuple pushed to clients: remaining time with
// one fractional digit, click count, stored best and a status line.
type Snapshot struct {
	SessionID    string               `json:"session_id"`
	Status       models.SessionStatus `json:"status"`
	RemainingSec string               `json:"remaining_sec"`
	Clicks       int                  `json:"clicks"`
	HighScore    int                  `json:"high_score"`
	Message      string               `json:"message"`
}

// Result summarizes a just-ended session.
type Result struct {
	SessionID      string  `json:"session_id"`
	DurationSec    float64 `json:"duration_sec"`
	FinalScore     int     `json:"final_score"`
	HighScore      int     `json:"high_score"`
	IsNewHighScore bool    `json:"is_new_high_score"`
}

// MultiSink fans display updates out to several sinks.
type MultiSink []Sink

func (m MultiSink) PublishSnapshot(snap Snapshot) {
	for _, s := range m {
		s.PublishSnapshot(snap)
	}
}

func (m MultiSink) PublishResult(res Result) {
	for _, s := range m {
		s.PublishResult(res)
	}
}

// formatRemaining renders a countdown value with consistent one-decimal
// precision regardless of tick granularity.
func formatRemaining(d time.Duration) string {
	return fmt.Sprintf("%.1f", d.Seconds())
}
