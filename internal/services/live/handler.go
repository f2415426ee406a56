package live

import (
	"net/http"

	"graphlet/internal/middleware"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens on the first frame, not at upgrade time.
		return true
	},
}

// WebSocketHandler upgrades HTTP requests into live session connections.
type WebSocketHandler struct {
	registry *Registry
	tokens   TokenResolver
	access   AccessChecker
	logger   zerolog.Logger
}

func NewWebSocketHandler(registry *Registry, tokens TokenResolver, access AccessChecker, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		registry: registry,
		tokens:   tokens,
		access:   access,
		logger:   logger.With().Str("component", "live-ws").Logger(),
	}
}

// HandleConnection upgrades the request and serves it until the connection
// ends. The workspace is named by the client inside its Auth frame, not in
// the URL.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	ctx, span := middleware.StartSpan(r.Context(), "WebSocket.Connect")
	defer span.End()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		middleware.AddSpanError(ctx, err)
		return
	}

	client := NewClient(conn, h.registry, h.tokens, h.access, h.logger)
	span.SetAttributes(attribute.String("connection.id", client.id.String()))

	client.Serve(ctx)
}

// CloseWorkspaceSession tears down the workspace's session, if one is
// running. Used when the workspace itself is deleted.
func (h *WebSocketHandler) CloseWorkspaceSession(workspaceID uuid.UUID) {
	h.registry.Remove(workspaceID)
}

// Shutdown stops every running session.
func (h *WebSocketHandler) Shutdown() {
	h.registry.Shutdown()
}
