package live

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Protocol-level heartbeat: a Ping every interval, closed after the
	// grace period passes with no Pong.
	defaultHeartbeatInterval = 5 * time.Second
	defaultHeartbeatGrace    = 10 * time.Second

	// The first frame must arrive and authenticate within this window.
	handshakeTimeout = 30 * time.Second

	writeTimeout = 10 * time.Second
)

// TokenResolver resolves a bearer token to a user id. Implemented by the
// auth repository.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (uuid.UUID, error)
}

// AccessChecker reports whether a user may join a workspace's live session.
// Implemented by the access repository.
type AccessChecker interface {
	HasWorkspaceAccess(ctx context.Context, userID, workspaceID uuid.UUID) (bool, error)
}

// Client owns one websocket connection's protocol lifecycle: the Auth
// handshake, the heartbeat, relaying actions into the session and delivering
// the session's messages back out. All writes to the socket happen on the
// Serve goroutine; a separate goroutine only reads.
type Client struct {
	id       uuid.UUID
	conn     *websocket.Conn
	registry *Registry
	tokens   TokenResolver
	access   AccessChecker

	// Bound at handshake success, immutable afterwards.
	userID      uuid.UUID
	workspaceID uuid.UUID
	session     *Session

	out    chan Message
	closed chan struct{}

	heartbeatInterval time.Duration
	heartbeatGrace    time.Duration
	lastPingSent      time.Time
	awaitingPong      bool

	logger zerolog.Logger
}

// NewClient wraps an already-upgraded websocket connection. The connection
// id is fresh and never reused.
func NewClient(conn *websocket.Conn, registry *Registry, tokens TokenResolver, access AccessChecker, logger zerolog.Logger) *Client {
	id := uuid.New()
	return &Client{
		id:                id,
		conn:              conn,
		registry:          registry,
		tokens:            tokens,
		access:            access,
		closed:            make(chan struct{}),
		heartbeatInterval: defaultHeartbeatInterval,
		heartbeatGrace:    defaultHeartbeatGrace,
		logger:            logger.With().Str("conn", id.String()).Logger(),
	}
}

// Serve runs the connection to completion. It always closes the socket, and
// if the handshake succeeded it always tells the session about the
// disconnect, whatever the exit path was.
func (c *Client) Serve(ctx context.Context) {
	defer c.conn.Close()
	defer close(c.closed)

	if !c.authenticate(ctx) {
		return
	}

	c.session = c.registry.GetOrCreate(c.workspaceID)
	c.out = make(chan Message, outboundSize)

	if err := c.session.Connect(c.id, c.userID, c.out); err != nil {
		c.logger.Warn().Err(err).Msg("could not join live session")
		c.closeWith(websocket.CloseTryAgainLater, "session unavailable")
		return
	}
	defer func() {
		if err := c.session.Disconnect(c.id, c.userID); err != nil {
			c.logger.Warn().Err(err).Msg("could not notify session of disconnect")
		}
	}()

	// The session's first message to us is the SessionInfo snapshot; the
	// client must see it before anything else.
	select {
	case msg := <-c.out:
		if err := c.write(msg); err != nil {
			return
		}
	case <-ctx.Done():
		return
	}

	c.run(ctx)
}

// authenticate enforces the handshake: the first frame must be a valid Auth
// message whose token resolves to a user with access to the workspace.
// Every failure closes the socket with a policy-violation status.
func (c *Client) authenticate(ctx context.Context) bool {
	_ = c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.logger.Debug().Err(err).Msg("connection closed before handshake")
		return false
	}

	msg, err := Decode(data)
	if err != nil {
		c.closeWith(websocket.ClosePolicyViolation, "malformed handshake")
		return false
	}

	auth, ok := msg.(Auth)
	if !ok {
		c.closeWith(websocket.ClosePolicyViolation, "first message must be Auth")
		return false
	}
	if auth.Token == "" || auth.Workspace == uuid.Nil {
		c.closeWith(websocket.ClosePolicyViolation, "invalid Auth payload")
		return false
	}

	userID, err := c.tokens.ResolveToken(ctx, auth.Token)
	if err != nil {
		c.closeWith(websocket.ClosePolicyViolation, "invalid token")
		return false
	}

	hasAccess, err := c.access.HasWorkspaceAccess(ctx, userID, auth.Workspace)
	if err != nil || !hasAccess {
		c.closeWith(websocket.ClosePolicyViolation, "workspace not found or access denied")
		return false
	}

	c.userID = userID
	c.workspaceID = auth.Workspace
	c.logger = c.logger.With().
		Str("user", userID.String()).
		Str("workspace", auth.Workspace.String()).
		Logger()

	_ = c.conn.SetReadDeadline(time.Time{})

	c.logger.Info().Msg("connection authenticated")
	return true
}

// run is the main loop: whichever of {inbound frame, outbound message,
// heartbeat tick} is ready first wins, until the connection ends.
func (c *Client) run(ctx context.Context) {
	inbound := make(chan Message)
	go c.readPump(inbound)

	ticker := time.NewTicker(c.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.closeWith(websocket.CloseGoingAway, "server shutting down")
			return

		case msg, ok := <-inbound:
			if !ok {
				// Read error or peer close.
				return
			}
			if c.handleInbound(msg) {
				return
			}

		case msg := <-c.out:
			if err := c.write(msg); err != nil {
				return
			}
			// Drain whatever else is already queued, preserving order.
			for n := len(c.out); n > 0; n-- {
				if err := c.write(<-c.out); err != nil {
					return
				}
			}

		case <-ticker.C:
			if c.heartbeat() {
				return
			}
		}
	}
}

// readPump feeds decoded inbound frames to the main loop. Frames that do not
// decode are logged and skipped; they are not fatal after the handshake.
func (c *Client) readPump(inbound chan<- Message) {
	defer close(inbound)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Err(err).Msg("read failed")
			}
			return
		}

		msg, err := Decode(data)
		if err != nil {
			c.logger.Debug().Err(err).Msg("ignoring undecodable frame")
			continue
		}

		select {
		case inbound <- msg:
		case <-c.closed:
			return
		}
	}
}

// handleInbound reacts to one message from the client. Returns true when the
// connection should end.
func (c *Client) handleInbound(msg Message) bool {
	switch m := msg.(type) {
	case Pong:
		c.awaitingPong = false
		return false

	case Ping:
		return c.write(NewPong()) != nil

	case Disconnect:
		c.logger.Info().Msg("client requested disconnect")
		c.closeWith(websocket.CloseNormalClosure, "client requested disconnect")
		return true

	case Lock:
		return c.submitAction(NewLock(c.userID, m.NoteID))

	case Unlock:
		return c.submitAction(NewUnlock(c.userID, m.NoteID))

	case Custom:
		// Stamp the sender; clients do not get to impersonate each other.
		m.UserID = c.userID
		return c.submitAction(m)

	default:
		c.logger.Debug().
			Str("type", string(msg.messageType())).
			Msg("ignoring unexpected message")
		return false
	}
}

// submitAction forwards an action to the session. The session is the sole
// arbiter; nothing is applied locally first.
func (c *Client) submitAction(action Message) bool {
	if err := c.session.Action(c.id, c.userID, action); err != nil {
		c.logger.Warn().Err(err).Msg("session rejected action")
		c.closeWith(websocket.CloseGoingAway, "session stopped")
		return true
	}
	return false
}

// heartbeat sends the periodic Ping and enforces the grace period. Returns
// true when the connection timed out and should end.
func (c *Client) heartbeat() bool {
	if c.awaitingPong && time.Since(c.lastPingSent) > c.heartbeatGrace {
		c.logger.Info().Msg("heartbeat timeout, closing connection")
		c.closeWith(websocket.CloseNormalClosure, "ping timeout")
		return true
	}

	if err := c.write(NewPing()); err != nil {
		return true
	}
	c.awaitingPong = true
	c.lastPingSent = time.Now()
	return false
}

func (c *Client) write(msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to encode outbound message")
		return nil
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Debug().Err(err).Msg("write failed")
		return err
	}
	return nil
}

// closeWith sends a close frame best-effort; the socket itself is closed by
// Serve's deferred Close.
func (c *Client) closeWith(code int, reason string) {
	deadline := time.Now().Add(writeTimeout)
	msg := websocket.FormatCloseMessage(code, reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		c.logger.Debug().Err(err).Msg("failed to send close frame")
	}
}
