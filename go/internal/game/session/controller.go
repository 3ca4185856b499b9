package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/clickrush/go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDuration is the fallback round length when the configured
	// duration is missing or non-positive.
	DefaultDuration = 5 * time.Second

	// DefaultTickInterval is the countdown granularity.
	DefaultTickInterval = 100 * time.Millisecond

	msgIdle    = "Press start to play"
	msgRunning = "Go!"
	msgEnded   = "Time's up!"
)

// Controller owns the single live game session and drives it through
// Idle -> Running -> Ended, with Restart returning to Idle from any
// state. Every operation is a total function over the state machine:
// calls that are invalid for the current state are no-ops, never errors.
//
// All state is guarded by one mutex, so click events and clock ticks are
// serialized and the session is only ever observed between transitions.
type Controller struct {
	clock        Clock
	durations    DurationSource
	scores       HighScores
	sink         Sink
	tickInterval time.Duration

	mu        sync.Mutex
	sess      models.Session
	highScore int
	ticker    clockwork.Ticker
	stopCh    chan struct{}
	last      *Result
}

// NewController creates a controller with a fresh idle session seeded
// from the duration source. The stored high score is read once up front
// so the first snapshot already shows the persisted best.
func NewController(clock Clock, durations DurationSource, scores HighScores, sink Sink, tickInterval time.Duration) *Controller {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	d := sanitizeDuration(durations.CurrentDuration())
	return &Controller{
		clock:        clock,
		durations:    durations,
		scores:       scores,
		sink:         sink,
		tickInterval: tickInterval,
		highScore:    scores.Read(context.Background()),
		sess: models.Session{
			ID:        uuid.New(),
			Duration:  d,
			Remaining: d,
			Status:    models.SessionStatusIdle,
		},
	}
}

// Start begins the countdown. It is a no-op while already running, and a
// no-op from Ended: an ended session must go through Restart first.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Status != models.SessionStatusIdle {
		log.Debug().
			Str("session_id", c.sess.ID.String()).
			Str("status", string(c.sess.Status)).
			Msg("ignoring start - session not idle")
		return
	}

	d := sanitizeDuration(c.durations.CurrentDuration())
	now := c.clock.Now()
	c.sess.Duration = d
	c.sess.Remaining = d
	c.sess.Clicks = 0
	c.sess.Status = models.SessionStatusRunning
	c.sess.StartedAt = &now
	c.highScore = c.scores.Read(ctx)

	// The ticker is created synchronously under the lock so the clock is
	// armed by the time Start returns.
	ticker := c.clock.NewTicker(c.tickInterval)
	stop := make(chan struct{})
	c.ticker = ticker
	c.stopCh = stop
	go c.runTicks(ctx, ticker, stop)

	log.Info().
		Str("session_id", c.sess.ID.String()).
		Dur("duration", d).
		Dur("tick_interval", c.tickInterval).
		Msg("session started")

	c.publishSnapshotLocked(msgRunning)
}

// RegisterClick counts one click. Clicks outside Running are no-ops.
// Every accepted call counts exactly once; deduplication is the input
// dispatch layer's job.
func (c *Controller) RegisterClick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Status != models.SessionStatusRunning {
		return
	}
	c.sess.Clicks++
	c.publishSnapshotLocked(msgRunning)
}

// End finishes the running session, stops the clock and persists the
// score if it beats the stored best. Idempotent: when the session is not
// running it changes nothing and returns the previous result, if any.
func (c *Controller) End(ctx context.Context) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Status != models.SessionStatusRunning {
		return c.last
	}
	return c.endLocked(ctx)
}

// Restart discards the current session and returns to Idle with a
// freshly-read duration. Safe from any state, including mid-countdown;
// the clock is always stopped so no ticker outlives its session. The
// stored high score is never touched here.
func (c *Controller) Restart(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopClockLocked()

	d := sanitizeDuration(c.durations.CurrentDuration())
	prev := c.sess.ID
	c.sess = models.Session{
		ID:        uuid.New(),
		Duration:  d,
		Remaining: d,
		Status:    models.SessionStatusIdle,
	}
	c.last = nil

	log.Info().
		Str("session_id", c.sess.ID.String()).
		Str("previous_session_id", prev.String()).
		Dur("duration", d).
		Msg("session restarted")

	c.publishSnapshotLocked(msgIdle)
}

// Snapshot returns the current display tuple.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(c.statusMessageLocked())
}

// Session returns a copy of the current session.
func (c *Controller) Session() models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// runTicks delivers clock ticks into the state machine until the session
// leaves Running or the context is cancelled.
func (c *Controller) runTicks(ctx context.Context, ticker clockwork.Ticker, stop chan struct{}) {
	for {
		select {
		case <-ticker.Chan():
			c.tick(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			ticker.Stop()
			return
		}
	}
}

// tick advances the countdown by one interval. When the remaining time
// would reach or cross zero it is clamped to exactly zero and the
// session ends, so the final displayed time is always "0.0".
func (c *Controller) tick(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Status != models.SessionStatusRunning {
		return
	}

	c.sess.Remaining -= c.tickInterval
	if c.sess.Remaining <= 0 {
		c.sess.Remaining = 0
		c.endLocked(ctx)
		return
	}
	c.publishSnapshotLocked(msgRunning)
}

// endLocked performs the Running -> Ended transition. Caller holds the
// mutex and has verified the session is running.
func (c *Controller) endLocked(ctx context.Context) *Result {
	c.stopClockLocked()

	now := c.clock.Now()
	c.sess.Status = models.SessionStatusEnded
	c.sess.EndedAt = &now

	final := c.sess.Clicks
	stored := c.scores.Read(ctx)
	isNew := final > stored
	if isNew {
		c.scores.Write(ctx, final)
		c.highScore = final
	} else {
		c.highScore = stored
	}

	res := &Result{
		SessionID:      c.sess.ID.String(),
		DurationSec:    c.sess.Duration.Seconds(),
		FinalScore:     final,
		HighScore:      c.highScore,
		IsNewHighScore: isNew,
	}
	c.last = res

	log.Info().
		Str("session_id", c.sess.ID.String()).
		Int("final_score", final).
		Int("high_score", c.highScore).
		Bool("new_high_score", isNew).
		Msg("session ended")

	c.sink.PublishResult(*res)
	c.publishSnapshotLocked(msgEnded)
	return res
}

// stopClockLocked cancels the countdown on every path that leaves
// Running: natural expiry, explicit end and restart. Leaving a ticker
// running past its session is a resource leak.
func (c *Controller) stopClockLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}

func (c *Controller) statusMessageLocked() string {
	switch c.sess.Status {
	case models.SessionStatusRunning:
		return msgRunning
	case models.SessionStatusEnded:
		return msgEnded
	default:
		return msgIdle
	}
}

func (c *Controller) snapshotLocked(msg string) Snapshot {
	return Snapshot{
		SessionID:    c.sess.ID.String(),
		Status:       c.sess.Status,
		RemainingSec: formatRemaining(c.sess.Remaining),
		Clicks:       c.sess.Clicks,
		HighScore:    c.highScore,
		Message:      msg,
	}
}

func (c *Controller) publishSnapshotLocked(msg string) {
	c.sink.PublishSnapshot(c.snapshotLocked(msg))
}

func sanitizeDuration(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultDuration
	}
	return d
}
