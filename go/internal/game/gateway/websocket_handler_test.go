package gateway

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mcdev12/clickrush/go/internal/game/session"
	"github.com/mcdev12/clickrush/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	starts   int
	clicks   int
	ends     int
	restarts int
	snap     session.Snapshot
}

func (f *fakeController) Start(ctx context.Context) { f.starts++ }

func (f *fakeController) RegisterClick() { f.clicks++ }

func (f *fakeController) Restart(ctx context.Context) { f.restarts++ }

func (f *fakeController) Snapshot() session.Snapshot { return f.snap }

func (f *fakeController) End(ctx context.Context) *session.Result {
	f.ends++
	return nil
}

type fakeSelector struct {
	current  time.Duration
	selected []time.Duration
}

func (f *fakeSelector) CurrentDuration() time.Duration { return f.current }

func (f *fakeSelector) Choices() []time.Duration { return []time.Duration{f.current} }
func (f *fakeSelector) Select(d time.Duration) bool {
	f.selected = append(f.selected, d)
	f.current = d
	return true
}

func newTestHandler() (*WebSocketHandler, *fakeController, *fakeSelector) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	ctrl := &fakeController{snap: session.Snapshot{
		Status:       models.SessionStatusIdle,
		RemainingSec: "5.0",
	}}
	sel := &fakeSelector{current: 5 * time.Second}
	h := NewWebSocketHandler(cm, ctrl, sel)
	cm.SetCommandHandler(h)
	return h, ctrl, sel
}

func TestHandleCommandRoutesActions(t *testing.T) {
	h, ctrl, sel := newTestHandler()
	conn := &Connection{ID: "test"}

	h.HandleCommand(conn, []byte(`{"action":"start"}`))
	h.HandleCommand(conn, []byte(`{"action":"click"}`))
	h.HandleCommand(conn, []byte(`{"action":"click"}`))
	h.HandleCommand(conn, []byte(`{"action":"end"}`))
	h.HandleCommand(conn, []byte(`{"action":"restart"}`))
	h.HandleCommand(conn, []byte(`{"action":"set_duration","duration_sec":10}`))

	assert.Equal(t, 1, ctrl.starts)
	assert.Equal(t, 2, ctrl.clicks)
	assert.Equal(t, 1, ctrl.ends)
	assert.Equal(t, 1, ctrl.restarts)
	assert.Equal(t, []time.Duration{10 * time.Second}, sel.selected)
}

func TestHandleCommandDropsGarbage(t *testing.T) {
	h, ctrl, sel := newTestHandler()
	conn := &Connection{ID: "test"}

	h.HandleCommand(conn, []byte(`not json`))
	h.HandleCommand(conn, []byte(`{"action":"reboot"}`))
	h.HandleCommand(conn, []byte(`{}`))

	assert.Zero(t, ctrl.starts)
	assert.Zero(t, ctrl.clicks)
	assert.Zero(t, ctrl.ends)
	assert.Zero(t, ctrl.restarts)
	assert.Empty(t, sel.selected)
}

func TestHandleStateReturnsSnapshotAndChoices(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	h.HandleState(rec, httptest.NewRequest("GET", "/api/state", nil))

	require.Equal(t, 200, rec.Code)
	var resp struct {
		Snapshot           session.Snapshot `json:"snapshot"`
		DurationChoicesSec []float64        `json:"duration_choices_sec"`
		CurrentDurationSec float64          `json:"current_duration_sec"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "5.0", resp.Snapshot.RemainingSec)
	assert.Equal(t, []float64{5}, resp.DurationChoicesSec)
	assert.Equal(t, 5.0, resp.CurrentDurationSec)
}

func TestSnapshotEventRoundTrip(t *testing.T) {
	snap := session.Snapshot{
		SessionID:    "abc",
		Status:       models.SessionStatusRunning,
		RemainingSec: "3.2",
		Clicks:       4,
		HighScore:    12,
		Message:      "Go!",
	}
	event, err := NewSnapshotEvent(snap)
	require.NoError(t, err)
	assert.Equal(t, EventTypeSnapshot, event.Type)
	assert.NotEmpty(t, event.ID)

	var decoded session.Snapshot
	require.NoError(t, json.Unmarshal(event.Data, &decoded))
	assert.Equal(t, snap, decoded)
}
