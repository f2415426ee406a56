package live

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Shutdown()

	workspaceID := uuid.New()
	first := r.GetOrCreate(workspaceID)
	second := r.GetOrCreate(workspaceID)

	assert.Same(t, first, second)
	assert.Equal(t, workspaceID, first.WorkspaceID())
	assert.Equal(t, 1, r.Count())
}

func TestGetOrCreateConcurrentSingleWinner(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Shutdown()

	workspaceID := uuid.New()
	sessions := make([]*Session, 16)

	var wg sync.WaitGroup
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = r.GetOrCreate(workspaceID)
		}(i)
	}
	wg.Wait()

	for _, s := range sessions[1:] {
		assert.Same(t, sessions[0], s)
	}
	assert.Equal(t, 1, r.Count())
}

func TestRemoveStopsSession(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	workspaceID := uuid.New()
	session := r.GetOrCreate(workspaceID)

	r.Remove(workspaceID)
	assert.Equal(t, 0, r.Count())

	select {
	case <-session.done:
	case <-time.After(time.Second):
		t.Fatal("session worker did not stop")
	}

	err := session.Connect(uuid.New(), uuid.New(), make(chan Message, 1))
	assert.ErrorIs(t, err, ErrSessionStopped)
}

func TestRemoveUnknownWorkspaceIsNoOp(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Remove(uuid.New())
	assert.Equal(t, 0, r.Count())
}

func TestRemoveThenGetOrCreateStartsFresh(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Shutdown()

	workspaceID := uuid.New()
	old := r.GetOrCreate(workspaceID)
	r.Remove(workspaceID)

	fresh := r.GetOrCreate(workspaceID)
	assert.NotSame(t, old, fresh)

	out := make(chan Message, outboundSize)
	require.NoError(t, fresh.Connect(uuid.New(), uuid.New(), out))
	recvMessage(t, out)
}

func TestShutdownStopsAllSessions(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	sessions := make([]*Session, 5)
	for i := range sessions {
		sessions[i] = r.GetOrCreate(uuid.New())
	}

	r.Shutdown()
	assert.Equal(t, 0, r.Count())

	for _, s := range sessions {
		select {
		case <-s.done:
		case <-time.After(time.Second):
			t.Fatal("session worker did not stop on shutdown")
		}
	}
}
