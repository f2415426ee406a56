package live

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// How long Remove waits for a session worker to drain before giving up.
const removeTimeout = 5 * time.Second

type registryEntry struct {
	session *Session
	cancel  context.CancelFunc
}

// Registry owns the workspace id -> Session index. It lazily creates one
// session and one worker goroutine per workspace and supervises their
// shutdown. It never does session-internal work on the caller's goroutine.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*registryEntry
	logger   zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*registryEntry),
		logger:   logger.With().Str("component", "live-registry").Logger(),
	}
}

// GetOrCreate returns the workspace's session, creating it and starting its
// worker if it does not exist. Concurrent callers racing on a new workspace
// id get the same session; exactly one worker is started.
func (r *Registry) GetOrCreate(workspaceID uuid.UUID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.sessions[workspaceID]; ok {
		return entry.session
	}

	r.logger.Info().Str("workspace", workspaceID.String()).Msg("creating live session")

	ctx, cancel := context.WithCancel(context.Background())
	session := newSession(workspaceID, r.logger)
	r.sessions[workspaceID] = &registryEntry{session: session, cancel: cancel}

	go session.Run(ctx)

	return session
}

// Remove cancels the workspace's session worker and waits for it to stop,
// bounded by removeTimeout. Removing an unknown workspace is a no-op.
func (r *Registry) Remove(workspaceID uuid.UUID) {
	r.mu.Lock()
	entry, ok := r.sessions[workspaceID]
	if ok {
		delete(r.sessions, workspaceID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	r.logger.Info().Str("workspace", workspaceID.String()).Msg("removing live session")
	entry.cancel()

	select {
	case <-entry.session.done:
	case <-time.After(removeTimeout):
		r.logger.Warn().
			Str("workspace", workspaceID.String()).
			Msg("timed out waiting for live session to stop")
	}
}

// Shutdown removes every session concurrently and waits for all of them.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(workspaceID uuid.UUID) {
			defer wg.Done()
			r.Remove(workspaceID)
		}(id)
	}
	wg.Wait()

	r.logger.Info().Int("sessions", len(ids)).Msg("live registry shut down")
}

// Count returns the number of running sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
