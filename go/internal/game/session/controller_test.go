package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/clickrush/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDurations struct {
	d time.Duration
}

func (f *fixedDurations) CurrentDuration() time.Duration { return f.d }

type fakeScores struct {
	mu     sync.Mutex
	stored int
	writes []int
}

func (f *fakeScores) Read(ctx context.Context) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored
}

func (f *fakeScores) Write(ctx context.Context, score int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, score)
	if score > f.stored {
		f.stored = score
	}
}

func (f *fakeScores) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

type recordingSink struct {
	snapCh chan Snapshot
	resCh  chan Result
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		snapCh: make(chan Snapshot, 1024),
		resCh:  make(chan Result, 16),
	}
}

func (r *recordingSink) PublishSnapshot(snap Snapshot) { r.snapCh <- snap }

func (r *recordingSink) PublishResult(res Result) { r.resCh <- res }

func (r *recordingSink) waitSnapshot(t *testing.T) Snapshot {
	t.Helper()
	select {
	case snap := <-r.snapCh:
		return snap
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for snapshot")
		return Snapshot{}
	}
}

func (r *recordingSink) waitResult(t *testing.T) Result {
	t.Helper()
	select {
	case res := <-r.resCh:
		return res
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for result")
		return Result{}
	}
}

func (r *recordingSink) assertNoResult(t *testing.T) {
	t.Helper()
	select {
	case res := <-r.resCh:
		require.FailNowf(t, "unexpected result", "%+v", res)
	case <-time.After(50 * time.Millisecond):
	}
}

type fixture struct {
	clock  *clockwork.FakeClock
	scores *fakeScores
	sink   *recordingSink
	ctrl   *Controller
}

func newFixture(t *testing.T, duration time.Duration, storedHigh int) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	scores := &fakeScores{stored: storedHigh}
	sink := newRecordingSink()
	ctrl := NewController(clock, &fixedDurations{d: duration}, scores, sink, 100*time.Millisecond)
	return &fixture{clock: clock, scores: scores, sink: sink, ctrl: ctrl}
}

// advanceTick moves the fake clock one interval and waits for the
// resulting state change to be published, so ticks are never coalesced.
func (f *fixture) advanceTick(t *testing.T) Snapshot {
	t.Helper()
	f.clock.Advance(100 * time.Millisecond)
	return f.sink.waitSnapshot(t)
}

func TestStartRunsCountdownToZero(t *testing.T) {
	f := newFixture(t, 500*time.Millisecond, 0)

	f.ctrl.Start(context.Background())
	snap := f.sink.waitSnapshot(t)
	assert.Equal(t, models.SessionStatusRunning, snap.Status)
	assert.Equal(t, "0.5", snap.RemainingSec)

	for i := 0; i < 4; i++ {
		snap = f.advanceTick(t)
		assert.Equal(t, models.SessionStatusRunning, snap.Status)
		assert.False(t, strings.HasPrefix(snap.RemainingSec, "-"), "remaining must never be negative")
	}
	assert.Equal(t, "0.1", snap.RemainingSec)

	// final tick clamps to exactly zero and ends the session
	f.clock.Advance(100 * time.Millisecond)
	res := f.sink.waitResult(t)
	snap = f.sink.waitSnapshot(t)

	assert.Equal(t, models.SessionStatusEnded, snap.Status)
	assert.Equal(t, "0.0", snap.RemainingSec)
	assert.Equal(t, 0, res.FinalScore)
	assert.False(t, res.IsNewHighScore)
}

func TestClicksCountOnlyWhileRunning(t *testing.T) {
	f := newFixture(t, 500*time.Millisecond, 0)

	// idle clicks are no-ops
	f.ctrl.RegisterClick()
	f.ctrl.RegisterClick()
	assert.Equal(t, 0, f.ctrl.Session().Clicks)

	f.ctrl.Start(context.Background())
	f.sink.waitSnapshot(t)

	for i := 0; i < 3; i++ {
		f.ctrl.RegisterClick()
		f.sink.waitSnapshot(t)
	}
	assert.Equal(t, 3, f.ctrl.Session().Clicks)

	for i := 0; i < 5; i++ {
		f.clock.Advance(100 * time.Millisecond)
		f.sink.waitSnapshot(t)
	}
	res := f.sink.waitResult(t)
	assert.Equal(t, 3, res.FinalScore)

	// ended clicks are no-ops
	f.ctrl.RegisterClick()
	assert.Equal(t, 3, f.ctrl.Session().Clicks)
}

func TestNewHighScorePersisted(t *testing.T) {
	f := newFixture(t, 5*time.Second, 10)

	f.ctrl.Start(context.Background())
	f.sink.waitSnapshot(t)

	// 12 clicks spread across the 50-tick run
	clicks := 0
	for i := 0; i < 50; i++ {
		if i%4 == 0 && clicks < 12 {
			f.ctrl.RegisterClick()
			f.sink.waitSnapshot(t)
			clicks++
		}
		f.clock.Advance(100 * time.Millisecond)
		f.sink.waitSnapshot(t)
	}
	require.Equal(t, 12, clicks)

	res := f.sink.waitResult(t)
	assert.Equal(t, 12, res.FinalScore)
	assert.True(t, res.IsNewHighScore)
	assert.Equal(t, 12, res.HighScore)
	assert.Equal(t, []int{12}, f.scores.writes)
	assert.Equal(t, 12, f.scores.stored)
}

func TestLowerScoreDoesNotPersist(t *testing.T) {
	f := newFixture(t, 500*time.Millisecond, 10)

	f.ctrl.Start(context.Background())
	f.sink.waitSnapshot(t)
	for i := 0; i < 3; i++ {
		f.ctrl.RegisterClick()
		f.sink.waitSnapshot(t)
	}

	res := f.ctrl.End(context.Background())
	require.NotNil(t, res)
	assert.Equal(t, 3, res.FinalScore)
	assert.False(t, res.IsNewHighScore)
	assert.Equal(t, 10, res.HighScore)
	assert.Equal(t, 0, f.scores.writeCount())
	assert.Equal(t, 10, f.scores.stored)
}

func TestEndIsIdempotent(t *testing.T) {
	f := newFixture(t, 500*time.Millisecond, 0)

	f.ctrl.Start(context.Background())
	f.sink.waitSnapshot(t)
	f.ctrl.RegisterClick()
	f.sink.waitSnapshot(t)

	first := f.ctrl.End(context.Background())
	require.NotNil(t, first)
	f.sink.waitResult(t)
	f.sink.waitSnapshot(t)

	second := f.ctrl.End(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.scores.writeCount())
	f.sink.assertNoResult(t)
}

func TestDoubleStartIsNoop(t *testing.T) {
	f := newFixture(t, 500*time.Millisecond, 0)

	f.ctrl.Start(context.Background())
	f.sink.waitSnapshot(t)
	started := f.ctrl.Session().StartedAt
	require.NotNil(t, started)

	f.ctrl.RegisterClick()
	f.sink.waitSnapshot(t)

	// re-entrant start must not reset clock or counters
	f.ctrl.Start(context.Background())
	sess := f.ctrl.Session()
	assert.Equal(t, 1, sess.Clicks)
	assert.Equal(t, started, sess.StartedAt)
	assert.Equal(t, 500*time.Millisecond, sess.Remaining)
}

func TestStartFromEndedRequiresRestart(t *testing.T) {
	f := newFixture(t, 500*time.Millisecond, 0)

	f.ctrl.Start(context.Background())
	f.sink.waitSnapshot(t)
	f.ctrl.End(context.Background())
	f.sink.waitResult(t)
	f.sink.waitSnapshot(t)

	f.ctrl.Start(context.Background())
	assert.Equal(t, models.SessionStatusEnded, f.ctrl.Session().Status)

	f.ctrl.Restart(context.Background())
	f.sink.waitSnapshot(t)
	f.ctrl.Start(context.Background())
	f.sink.waitSnapshot(t)
	assert.Equal(t, models.SessionStatusRunning, f.ctrl.Session().Status)
}

func TestRestartMidRunStopsClockAndNeverPersists(t *testing.T) {
	f := newFixture(t, 500*time.Millisecond, 0)

	f.ctrl.Start(context.Background())
	f.sink.waitSnapshot(t)
	for i := 0; i < 20; i++ {
		f.ctrl.RegisterClick()
		f.sink.waitSnapshot(t)
	}
	f.advanceTick(t)
	f.advanceTick(t)

	prevID := f.ctrl.Session().ID
	f.ctrl.Restart(context.Background())
	snap := f.sink.waitSnapshot(t)
	assert.Equal(t, models.SessionStatusIdle, snap.Status)
	assert.Equal(t, "0.5", snap.RemainingSec)
	assert.Equal(t, 0, snap.Clicks)

	// a mid-run restart drops the score without saving
	assert.Equal(t, 0, f.scores.writeCount())
	f.sink.assertNoResult(t)

	// the old clock must be dead: advancing does nothing
	f.clock.Advance(time.Second)
	sess := f.ctrl.Session()
	assert.Equal(t, models.SessionStatusIdle, sess.Status)
	assert.Equal(t, 500*time.Millisecond, sess.Remaining)
	assert.NotEqual(t, prevID, sess.ID)

	select {
	case snap := <-f.sink.snapCh:
		t.Fatalf("unexpected snapshot after restart: %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRestartFromEndedResetsForNewRound(t *testing.T) {
	f := newFixture(t, 500*time.Millisecond, 0)

	f.ctrl.Start(context.Background())
	f.sink.waitSnapshot(t)
	f.ctrl.RegisterClick()
	f.sink.waitSnapshot(t)
	f.ctrl.End(context.Background())
	f.sink.waitResult(t)
	f.sink.waitSnapshot(t)
	require.Equal(t, 1, f.scores.writeCount())

	f.ctrl.Restart(context.Background())
	snap := f.sink.waitSnapshot(t)
	assert.Equal(t, models.SessionStatusIdle, snap.Status)
	assert.Equal(t, 0, snap.Clicks)
	// restart itself writes nothing
	assert.Equal(t, 1, f.scores.writeCount())
	// the persisted best is still displayed
	assert.Equal(t, 1, snap.HighScore)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sink := newRecordingSink()
	ctrl := NewController(clock, &fixedDurations{d: 0}, &fakeScores{}, sink, 100*time.Millisecond)

	assert.Equal(t, DefaultDuration, ctrl.Session().Duration)

	ctrl.Start(context.Background())
	snap := sink.waitSnapshot(t)
	assert.Equal(t, "5.0", snap.RemainingSec)
}

func TestSnapshotFormatsOneDecimal(t *testing.T) {
	assert.Equal(t, "5.0", formatRemaining(5*time.Second))
	assert.Equal(t, "0.1", formatRemaining(100*time.Millisecond))
	assert.Equal(t, "0.0", formatRemaining(0))
	assert.Equal(t, "2.5", formatRemaining(2500*time.Millisecond))
}
