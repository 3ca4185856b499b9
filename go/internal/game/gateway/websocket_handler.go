package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mcdev12/clickrush/go/internal/game/session"
	"github.com/rs/zerolog/log"
)

// GameController defines what the handler needs from the session
// controller. All operations are total; the handler never has errors to
// surface to the client beyond malformed messages.
type GameController interface {
	Start(ctx context.Context)
	RegisterClick()
	End(ctx context.Context) *session.Result
	Restart(ctx context.Context)
	Snapshot() session.Snapshot
}

// DurationSelector defines what the handler needs from the duration
// selector.
type DurationSelector interface {
	CurrentDuration() time.Duration
	Select(d time.Duration) bool
	Choices() []time.Duration
}

// WebSocketHandler accepts browser connections and routes their commands
// into the game.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	controller        GameController
	selector          DurationSelector
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(cm *ConnectionManager, controller GameController, selector DurationSelector) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		controller:        controller,
		selector:          selector,
	}
}

// HandleGameConnection upgrades the connection and sends the current
// snapshot so a client joining mid-session renders immediately.
func (h *WebSocketHandler) HandleGameConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.connectionManager.UpgradeConnection(w, r)
	if err != nil {
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
		return
	}

	event, err := NewSnapshotEvent(h.controller.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("connection_id", conn.ID).Msg("failed to build initial snapshot")
		return
	}
	h.connectionManager.SendEvent(conn, event)
}

// HandleCommand implements CommandHandler. Unknown or malformed commands
// are logged and dropped; every game operation is a no-op when invalid
// for the current state, so there is nothing to reject here.
func (h *WebSocketHandler) HandleCommand(conn *Connection, data []byte) {
	cmd, err := ParseClientCommand(data)
	if err != nil {
		log.Warn().Err(err).Str("connection_id", conn.ID).Msg("dropping malformed client command")
		return
	}

	ctx := context.Background()
	switch cmd.Action {
	case ActionStart:
		h.controller.Start(ctx)
	case ActionClick:
		h.controller.RegisterClick()
	case ActionEnd:
		h.controller.End(ctx)
	case ActionRestart:
		h.controller.Restart(ctx)
	case ActionSetDuration:
		d := time.Duration(cmd.DurationSec * float64(time.Second))
		if h.selector.Select(d) {
			// Idle sessions pick the new duration up on start; show it now.
			h.connectionManager.PublishSnapshot(h.controller.Snapshot())
		}
	default:
		log.Debug().
			Str("connection_id", conn.ID).
			Str("action", cmd.Action).
			Msg("unknown client action - ignoring")
	}
}

// HandleState returns the current display snapshot and duration choices.
func (h *WebSocketHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	choices := h.selector.Choices()
	choicesSec := make([]float64, len(choices))
	for i, d := range choices {
		choicesSec[i] = d.Seconds()
	}

	resp := struct {
		Snapshot           session.Snapshot `json:"snapshot"`
		DurationChoicesSec []float64        `json:"duration_choices_sec"`
		CurrentDurationSec float64          `json:"current_duration_sec"`
	}{
		Snapshot:           h.controller.Snapshot(),
		DurationChoicesSec: choicesSec,
		CurrentDurationSec: h.selector.CurrentDuration().Seconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode state response")
	}
}

// HandleConnectionStats returns statistics about active connections.
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"total_connections": h.connectionManager.ConnectionCount(),
	})
}

// RegisterRoutes registers gateway routes with an HTTP mux.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/game", h.HandleGameConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
	mux.HandleFunc("/api/state", h.HandleState)
}
