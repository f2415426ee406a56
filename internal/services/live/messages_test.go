package live

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAuth(t *testing.T) {
	workspace := uuid.New()
	data := []byte(`{"type":"Auth","token":"abc123","workspace":"` + workspace.String() + `"}`)

	msg, err := Decode(data)
	require.NoError(t, err)

	auth, ok := msg.(Auth)
	require.True(t, ok, "expected Auth, got %T", msg)
	assert.Equal(t, "abc123", auth.Token)
	assert.Equal(t, workspace, auth.Workspace)
}

func TestDecodeLock(t *testing.T) {
	userID := uuid.New()
	noteID := uuid.New()
	data := []byte(`{"type":"Lock","userId":"` + userID.String() + `","noteId":"` + noteID.String() + `"}`)

	msg, err := Decode(data)
	require.NoError(t, err)

	lock, ok := msg.(Lock)
	require.True(t, ok, "expected Lock, got %T", msg)
	assert.Equal(t, userID, lock.UserID)
	assert.Equal(t, noteID, lock.NoteID)
}

func TestDecodeUnknownType(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"SomethingNew","extra":42}`))
	require.NoError(t, err)

	unknown, ok := msg.(Unknown)
	require.True(t, ok, "expected Unknown, got %T", msg)
	assert.Equal(t, MessageType("SomethingNew"), unknown.Type)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string][]byte{
		"malformed json": []byte(`{"type":`),
		"missing type":   []byte(`{"token":"abc"}`),
		"empty type":     []byte(`{"type":""}`),
		"not an object":  []byte(`"Ping"`),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			assert.Error(t, err)
		})
	}
}

func TestEncodeCarriesTypeTag(t *testing.T) {
	data, err := Encode(NewPing())
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, "Ping", envelope["type"])
}

func TestSessionInfoRoundTrip(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	noteID := uuid.New()

	original := NewSessionInfo([]uuid.UUID{userA, userB}, map[uuid.UUID]uuid.UUID{noteID: userA})

	data, err := Encode(original)
	require.NoError(t, err)

	msg, err := Decode(data)
	require.NoError(t, err)

	info, ok := msg.(SessionInfo)
	require.True(t, ok, "expected SessionInfo, got %T", msg)
	assert.ElementsMatch(t, []uuid.UUID{userA, userB}, info.Users)
	assert.Equal(t, userA, info.Locks[noteID])
}

func TestCustomPreservesPayload(t *testing.T) {
	userID := uuid.New()
	data := []byte(`{"type":"Custom","userId":"` + userID.String() + `","customType":"cursor","payload":{"x":10,"y":20}}`)

	msg, err := Decode(data)
	require.NoError(t, err)

	custom, ok := msg.(Custom)
	require.True(t, ok, "expected Custom, got %T", msg)
	assert.Equal(t, "cursor", custom.CustomType)
	assert.JSONEq(t, `{"x":10,"y":20}`, string(custom.Payload))

	// Relaying re-encodes; the payload must survive byte-for-byte in meaning.
	out, err := Encode(custom)
	require.NoError(t, err)

	relayed, err := Decode(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":10,"y":20}`, string(relayed.(Custom).Payload))
}
