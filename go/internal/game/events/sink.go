package events

import (
	"context"
	"time"

	"github.com/mcdev12/clickrush/go/internal/game/session"
)

// ResultSink adapts the JetStream publisher to the controller's sink
// interface. Snapshots are display-only and never leave the server;
// only results go to the bus. Publishing happens off the game goroutine
// so a slow broker cannot stall a session.
type ResultSink struct {
	publisher *JetStreamPublisher
}

// NewResultSink wraps a publisher. The publisher may be nil, in which
// case the sink does nothing.
func NewResultSink(publisher *JetStreamPublisher) *ResultSink {
	return &ResultSink{publisher: publisher}
}

// PublishSnapshot implements session.Sink.
func (s *ResultSink) PublishSnapshot(snap session.Snapshot) {}

// PublishResult implements session.Sink.
func (s *ResultSink) PublishResult(res session.Result) {
	if s.publisher == nil {
		return
	}
	payload := SessionEndedPayload{
		SessionID:      res.SessionID,
		DurationSec:    res.DurationSec,
		FinalScore:     res.FinalScore,
		HighScore:      res.HighScore,
		IsNewHighScore: res.IsNewHighScore,
		EndedAt:        time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.publisher.PublishSessionEnded(ctx, payload)
	}()
}
