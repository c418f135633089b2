package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The presentation layer is served from its own origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler upgrades to a websocket and pushes a full state snapshot on
// connect and after every mutation, so presentation can re-render without
// polling.
func (h *APIHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snapshots, cancel := h.coordinator.Subscribe()
	defer cancel()

	// Drain client frames so we notice a closed connection.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	if err := conn.WriteJSON(h.coordinator.Snapshot()); err != nil {
		slog.Warn("failed to write initial snapshot", "error", err)
		return
	}

	for snap := range snapshots {
		if err := conn.WriteJSON(snap); err != nil {
			slog.Debug("state stream closed", "error", err)
			return
		}
	}
}
