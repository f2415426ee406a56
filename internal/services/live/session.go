package live

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Capacity of a session's inbound event queue.
	inboxSize = 256

	// Capacity of each connection's outbound queue. A client that falls
	// this far behind starts losing messages rather than stalling the
	// session worker.
	outboundSize = 64
)

// ErrSessionStopped is returned when submitting an event to a session whose
// worker has exited.
var ErrSessionStopped = errors.New("live session stopped")

// Internal events. Everything that mutates session state arrives as one of
// these through the inbox and is processed by the single worker goroutine.
type connectEvent struct {
	connID uuid.UUID
	userID uuid.UUID
	out    chan Message
}

type disconnectEvent struct {
	connID uuid.UUID
	userID uuid.UUID
}

type actionEvent struct {
	connID uuid.UUID
	userID uuid.UUID
	action Message
}

type sessionClient struct {
	userID uuid.UUID
	out    chan Message
}

// Session coordinates the live state of one workspace: connected clients,
// presence and advisory note locks. All state is owned by the single
// goroutine running Run, so no field needs a mutex; everyone else talks to
// the session through its inbox.
type Session struct {
	workspaceID uuid.UUID
	inbox       chan any
	done        chan struct{}

	// Worker-owned state. Never touched outside Run.
	clients map[uuid.UUID]sessionClient // connection id -> client
	locks   map[uuid.UUID]uuid.UUID    // note id -> holder user id
	active  map[uuid.UUID]uuid.UUID    // user id -> latest connection id

	logger zerolog.Logger
}

func newSession(workspaceID uuid.UUID, logger zerolog.Logger) *Session {
	return &Session{
		workspaceID: workspaceID,
		inbox:       make(chan any, inboxSize),
		done:        make(chan struct{}),
		clients:     make(map[uuid.UUID]sessionClient),
		locks:       make(map[uuid.UUID]uuid.UUID),
		active:      make(map[uuid.UUID]uuid.UUID),
		logger:      logger.With().Str("workspace", workspaceID.String()).Logger(),
	}
}

// WorkspaceID returns the workspace this session coordinates.
func (s *Session) WorkspaceID() uuid.UUID {
	return s.workspaceID
}

// Run consumes session events until ctx is cancelled. Cancellation is
// observed between events; the event in flight always completes.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)

	s.logger.Info().Msg("live session started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("live session stopped")
			return
		case ev := <-s.inbox:
			s.process(ev)
		}
	}
}

// Connect registers a new connection and asks for a SessionInfo snapshot to
// be delivered on out.
func (s *Session) Connect(connID, userID uuid.UUID, out chan Message) error {
	return s.submit(connectEvent{connID: connID, userID: userID, out: out})
}

// Disconnect removes a connection. Disconnecting an unknown connection id is
// a no-op inside the session, covering the race where a Connect for the same
// user already evicted it.
func (s *Session) Disconnect(connID, userID uuid.UUID) error {
	return s.submit(disconnectEvent{connID: connID, userID: userID})
}

// Action submits a client action (Lock, Unlock or Custom) for serialized
// processing and relay.
func (s *Session) Action(connID, userID uuid.UUID, action Message) error {
	return s.submit(actionEvent{connID: connID, userID: userID, action: action})
}

func (s *Session) submit(ev any) error {
	select {
	case s.inbox <- ev:
		return nil
	case <-s.done:
		return ErrSessionStopped
	}
}

// process dispatches one event. A panic while handling an event is contained
// here so a single bad event cannot stop the whole workspace's session.
func (s *Session) process(ev any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Type("event", ev).Msg("recovered from panic while processing session event")
		}
	}()

	switch e := ev.(type) {
	case connectEvent:
		s.handleConnect(e)
	case disconnectEvent:
		s.handleDisconnect(e)
	case actionEvent:
		s.handleAction(e)
	default:
		s.logger.Warn().Type("event", ev).Msg("unknown session event")
	}
}

func (s *Session) handleConnect(e connectEvent) {
	// A user gets one live connection. If an older one exists it loses its
	// session membership; its socket teardown happens on its own handler.
	if oldConnID, ok := s.active[e.userID]; ok {
		if old, ok := s.clients[oldConnID]; ok {
			s.logger.Info().
				Str("user", e.userID.String()).
				Str("old_conn", oldConnID.String()).
				Msg("evicting old connection for user")
			s.send(oldConnID, old, NewServerError("new connection from same user"))
			delete(s.clients, oldConnID)
		}
	}

	s.clients[e.connID] = sessionClient{userID: e.userID, out: e.out}
	s.active[e.userID] = e.connID

	s.logger.Info().
		Str("conn", e.connID.String()).
		Str("user", e.userID.String()).
		Int("clients", len(s.clients)).
		Msg("client connected")

	s.send(e.connID, s.clients[e.connID], NewSessionInfo(s.presentUsers(), s.lockSnapshot()))
	s.broadcast(NewUserJoined(e.userID), e.connID)
}

func (s *Session) handleDisconnect(e disconnectEvent) {
	if _, ok := s.clients[e.connID]; !ok {
		return
	}
	delete(s.clients, e.connID)

	if s.active[e.userID] == e.connID {
		delete(s.active, e.userID)
	}

	for noteID, holder := range s.locks {
		if holder == e.userID {
			delete(s.locks, noteID)
		}
	}

	s.logger.Info().
		Str("conn", e.connID.String()).
		Str("user", e.userID.String()).
		Int("clients", len(s.clients)).
		Msg("client disconnected")

	s.broadcast(NewUserLeft(e.userID), uuid.Nil)
}

func (s *Session) handleAction(e actionEvent) {
	switch action := e.action.(type) {
	case Lock:
		if holder, locked := s.locks[action.NoteID]; locked && holder != e.userID {
			// Conflict goes to the requester only; nobody else is told.
			if c, ok := s.clients[e.connID]; ok {
				s.send(e.connID, c, NewServerError(fmt.Sprintf("note %s is already locked", action.NoteID)))
			}
			return
		}
		s.locks[action.NoteID] = e.userID
		s.logger.Debug().
			Str("note", action.NoteID.String()).
			Str("user", e.userID.String()).
			Msg("note locked")

	case Unlock:
		// Only the holder can release; anyone else's unlock is ignored.
		if holder, locked := s.locks[action.NoteID]; locked && holder == e.userID {
			delete(s.locks, action.NoteID)
			s.logger.Debug().
				Str("note", action.NoteID.String()).
				Str("user", e.userID.String()).
				Msg("note unlocked")
		}
	}

	s.broadcast(e.action, e.connID)
}

// broadcast queues msg for every connected client except excludeConnID.
// Pass uuid.Nil to reach everyone.
func (s *Session) broadcast(msg Message, excludeConnID uuid.UUID) {
	for connID, c := range s.clients {
		if connID == excludeConnID {
			continue
		}
		s.send(connID, c, msg)
	}
}

// send queues msg without ever blocking the worker. A full outbound queue
// means the client is stalled; the message is dropped and logged.
func (s *Session) send(connID uuid.UUID, c sessionClient, msg Message) {
	select {
	case c.out <- msg:
	default:
		s.logger.Warn().
			Str("conn", connID.String()).
			Str("type", string(msg.messageType())).
			Msg("outbound queue full, dropping message")
	}
}

func (s *Session) presentUsers() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(s.clients))
	users := make([]uuid.UUID, 0, len(s.clients))
	for _, c := range s.clients {
		if _, ok := seen[c.userID]; ok {
			continue
		}
		seen[c.userID] = struct{}{}
		users = append(users, c.userID)
	}
	return users
}

func (s *Session) lockSnapshot() map[uuid.UUID]uuid.UUID {
	snapshot := make(map[uuid.UUID]uuid.UUID, len(s.locks))
	for noteID, userID := range s.locks {
		snapshot[noteID] = userID
	}
	return snapshot
}
