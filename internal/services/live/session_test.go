package live

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startSession runs a session worker for the duration of the test.
func startSession(t *testing.T) *Session {
	t.Helper()
	s := newSession(uuid.New(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-s.done
	})
	return s
}

func recvMessage(t *testing.T, out chan Message) Message {
	t.Helper()
	select {
	case msg := <-out:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func assertNoMessage(t *testing.T, out chan Message) {
	t.Helper()
	select {
	case msg := <-out:
		t.Fatalf("unexpected message %T: %+v", msg, msg)
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeConn struct {
	connID uuid.UUID
	userID uuid.UUID
	out    chan Message
}

func join(t *testing.T, s *Session, userID uuid.UUID) fakeConn {
	t.Helper()
	c := fakeConn{connID: uuid.New(), userID: userID, out: make(chan Message, outboundSize)}
	require.NoError(t, s.Connect(c.connID, c.userID, c.out))
	return c
}

func TestConnectDeliversSnapshotAndJoinEvent(t *testing.T) {
	s := startSession(t)

	first := join(t, s, uuid.New())
	info := recvMessage(t, first.out).(SessionInfo)
	assert.ElementsMatch(t, []uuid.UUID{first.userID}, info.Users)
	assert.Empty(t, info.Locks)

	second := join(t, s, uuid.New())
	info = recvMessage(t, second.out).(SessionInfo)
	assert.ElementsMatch(t, []uuid.UUID{first.userID, second.userID}, info.Users)

	// The existing client learns about the newcomer; the newcomer does not
	// get a UserJoined for itself.
	joined := recvMessage(t, first.out).(UserJoined)
	assert.Equal(t, second.userID, joined.UserID)
	assertNoMessage(t, second.out)
}

func TestConnectEvictsPreviousConnectionOfSameUser(t *testing.T) {
	s := startSession(t)

	userID := uuid.New()
	old := join(t, s, userID)
	recvMessage(t, old.out) // SessionInfo

	fresh := fakeConn{connID: uuid.New(), userID: userID, out: make(chan Message, outboundSize)}
	require.NoError(t, s.Connect(fresh.connID, fresh.userID, fresh.out))

	serverErr := recvMessage(t, old.out).(ServerError)
	assert.Contains(t, serverErr.Message, "new connection from same user")

	// The evicted connection is out of the session; it sees nothing further.
	info := recvMessage(t, fresh.out).(SessionInfo)
	assert.ElementsMatch(t, []uuid.UUID{userID}, info.Users)
	assertNoMessage(t, old.out)
}

func TestLockConflictGoesToRequesterOnly(t *testing.T) {
	s := startSession(t)

	alice := join(t, s, uuid.New())
	recvMessage(t, alice.out)
	bob := join(t, s, uuid.New())
	recvMessage(t, bob.out)
	recvMessage(t, alice.out) // UserJoined for bob

	noteID := uuid.New()
	require.NoError(t, s.Action(alice.connID, alice.userID, NewLock(alice.userID, noteID)))

	lock := recvMessage(t, bob.out).(Lock)
	assert.Equal(t, alice.userID, lock.UserID)
	assert.Equal(t, noteID, lock.NoteID)

	// Bob's competing lock fails privately; Alice is not disturbed.
	require.NoError(t, s.Action(bob.connID, bob.userID, NewLock(bob.userID, noteID)))
	serverErr := recvMessage(t, bob.out).(ServerError)
	assert.Contains(t, serverErr.Message, "already locked")
	assertNoMessage(t, alice.out)
}

func TestRelockByHolderIsIdempotent(t *testing.T) {
	s := startSession(t)

	alice := join(t, s, uuid.New())
	recvMessage(t, alice.out)
	bob := join(t, s, uuid.New())
	recvMessage(t, bob.out)
	recvMessage(t, alice.out)

	noteID := uuid.New()
	require.NoError(t, s.Action(alice.connID, alice.userID, NewLock(alice.userID, noteID)))
	recvMessage(t, bob.out)

	require.NoError(t, s.Action(alice.connID, alice.userID, NewLock(alice.userID, noteID)))
	relock := recvMessage(t, bob.out).(Lock)
	assert.Equal(t, noteID, relock.NoteID)
	assertNoMessage(t, alice.out)
}

func TestUnlockByNonHolderIsIgnored(t *testing.T) {
	s := startSession(t)

	alice := join(t, s, uuid.New())
	recvMessage(t, alice.out)
	bob := join(t, s, uuid.New())
	recvMessage(t, bob.out)
	recvMessage(t, alice.out)

	noteID := uuid.New()
	require.NoError(t, s.Action(alice.connID, alice.userID, NewLock(alice.userID, noteID)))
	recvMessage(t, bob.out)

	// Bob cannot release Alice's lock, but his Unlock still relays.
	require.NoError(t, s.Action(bob.connID, bob.userID, NewUnlock(bob.userID, noteID)))
	recvMessage(t, alice.out)

	// Charlie joins and the snapshot still shows the lock held by Alice.
	charlie := join(t, s, uuid.New())
	info := recvMessage(t, charlie.out).(SessionInfo)
	assert.Equal(t, alice.userID, info.Locks[noteID])
}

func TestDisconnectReleasesLocksAndNotifies(t *testing.T) {
	s := startSession(t)

	alice := join(t, s, uuid.New())
	recvMessage(t, alice.out)
	bob := join(t, s, uuid.New())
	recvMessage(t, bob.out)
	recvMessage(t, alice.out)

	noteID := uuid.New()
	require.NoError(t, s.Action(alice.connID, alice.userID, NewLock(alice.userID, noteID)))
	recvMessage(t, bob.out)

	require.NoError(t, s.Disconnect(alice.connID, alice.userID))
	left := recvMessage(t, bob.out).(UserLeft)
	assert.Equal(t, alice.userID, left.UserID)

	charlie := join(t, s, uuid.New())
	info := recvMessage(t, charlie.out).(SessionInfo)
	assert.ElementsMatch(t, []uuid.UUID{bob.userID, charlie.userID}, info.Users)
	assert.Empty(t, info.Locks)
}

func TestDisconnectUnknownConnectionIsNoOp(t *testing.T) {
	s := startSession(t)

	alice := join(t, s, uuid.New())
	recvMessage(t, alice.out)

	require.NoError(t, s.Disconnect(uuid.New(), uuid.New()))
	assertNoMessage(t, alice.out)
}

func TestActionBroadcastExcludesOrigin(t *testing.T) {
	s := startSession(t)

	alice := join(t, s, uuid.New())
	recvMessage(t, alice.out)
	bob := join(t, s, uuid.New())
	recvMessage(t, bob.out)
	recvMessage(t, alice.out)

	custom := NewCustom(alice.userID, "cursor", []byte(`{"x":1}`))
	require.NoError(t, s.Action(alice.connID, alice.userID, custom))

	relayed := recvMessage(t, bob.out).(Custom)
	assert.Equal(t, "cursor", relayed.CustomType)
	assert.Equal(t, alice.userID, relayed.UserID)
	assertNoMessage(t, alice.out)
}

func TestSubmitAfterStopReturnsError(t *testing.T) {
	s := newSession(uuid.New(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)

	cancel()
	<-s.done

	err := s.Connect(uuid.New(), uuid.New(), make(chan Message, 1))
	assert.ErrorIs(t, err, ErrSessionStopped)
}

func TestSlowClientDoesNotBlockSession(t *testing.T) {
	s := startSession(t)

	// A client that never drains its queue must not stall broadcasts to
	// others. Its single slot is filled by its own SessionInfo.
	stuck := fakeConn{connID: uuid.New(), userID: uuid.New(), out: make(chan Message, 1)}
	require.NoError(t, s.Connect(stuck.connID, stuck.userID, stuck.out))

	healthy := join(t, s, uuid.New())
	info := recvMessage(t, healthy.out).(SessionInfo)
	assert.Len(t, info.Users, 2)

	require.NoError(t, s.Action(healthy.connID, healthy.userID, NewLock(healthy.userID, uuid.New())))

	other := join(t, s, uuid.New())
	info = recvMessage(t, other.out).(SessionInfo)
	assert.Len(t, info.Users, 3)
	assert.Len(t, info.Locks, 1)
}
