package api

import (
	"net/http"
)

// WebSocket endpoints

// HandleLiveConnection upgrades the request into a live collaboration
// connection. The client names its workspace in the Auth handshake.
func (h *Handler) HandleLiveConnection(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.HandleConnection(w, r)
}
