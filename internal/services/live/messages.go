package live

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MessageType is the wire discriminator carried in every frame's "type"
// field.
type MessageType string

const (
	TypePing        MessageType = "Ping"
	TypePong        MessageType = "Pong"
	TypeAuth        MessageType = "Auth"
	TypeDisconnect  MessageType = "Disconnect"
	TypeSessionInfo MessageType = "SessionInfo"
	TypeMessageAck  MessageType = "MessageAck"
	TypeUserJoined  MessageType = "UserJoined"
	TypeUserLeft    MessageType = "UserLeft"
	TypeServerError MessageType = "ServerError"
	TypeLock        MessageType = "Lock"
	TypeUnlock      MessageType = "Unlock"
	TypeCustom      MessageType = "Custom"
)

// Message is implemented by every wire message. Values are never mutated
// after construction; relayed messages are forwarded as decoded.
type Message interface {
	messageType() MessageType
}

// Ping and Pong form the protocol-level heartbeat. They are distinct from
// websocket control frames so browser clients can take part.
type Ping struct {
	Type MessageType `json:"type"`
}

type Pong struct {
	Type MessageType `json:"type"`
}

// Auth must be the first frame on every connection.
type Auth struct {
	Type      MessageType `json:"type"`
	Token     string      `json:"token"`
	Workspace uuid.UUID   `json:"workspace"`
}

// Disconnect requests an orderly close.
type Disconnect struct {
	Type MessageType `json:"type"`
}

// SessionInfo is the snapshot sent to a client right after it joins:
// the distinct set of present users and the full lock table.
type SessionInfo struct {
	Type  MessageType             `json:"type"`
	Users []uuid.UUID             `json:"users"`
	Locks map[uuid.UUID]uuid.UUID `json:"locks"`
}

// MessageAck acknowledges receipt of an identified message.
type MessageAck struct {
	Type      MessageType `json:"type"`
	MessageID uuid.UUID   `json:"messageId"`
}

type UserJoined struct {
	Type   MessageType `json:"type"`
	UserID uuid.UUID   `json:"userId"`
}

type UserLeft struct {
	Type   MessageType `json:"type"`
	UserID uuid.UUID   `json:"userId"`
}

// ServerError is informational; receiving one never implies the connection
// is about to close.
type ServerError struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// Lock claims the advisory lock on a note.
type Lock struct {
	Type   MessageType `json:"type"`
	UserID uuid.UUID   `json:"userId"`
	NoteID uuid.UUID   `json:"noteId"`
}

// Unlock releases the advisory lock on a note.
type Unlock struct {
	Type   MessageType `json:"type"`
	UserID uuid.UUID   `json:"userId"`
	NoteID uuid.UUID   `json:"noteId"`
}

// Custom is an application-defined action relayed verbatim to the other
// clients in the workspace. The session never inspects the payload.
type Custom struct {
	Type       MessageType     `json:"type"`
	UserID     uuid.UUID       `json:"userId"`
	CustomType string          `json:"customType"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Unknown stands in for any frame with an unrecognized type tag, so protocol
// extensions stay additive instead of breaking old servers.
type Unknown struct {
	Type MessageType `json:"type"`
}

func (m Ping) messageType() MessageType        { return TypePing }
func (m Pong) messageType() MessageType        { return TypePong }
func (m Auth) messageType() MessageType        { return TypeAuth }
func (m Disconnect) messageType() MessageType  { return TypeDisconnect }
func (m SessionInfo) messageType() MessageType { return TypeSessionInfo }
func (m MessageAck) messageType() MessageType  { return TypeMessageAck }
func (m UserJoined) messageType() MessageType  { return TypeUserJoined }
func (m UserLeft) messageType() MessageType    { return TypeUserLeft }
func (m ServerError) messageType() MessageType { return TypeServerError }
func (m Lock) messageType() MessageType        { return TypeLock }
func (m Unlock) messageType() MessageType      { return TypeUnlock }
func (m Custom) messageType() MessageType      { return TypeCustom }
func (m Unknown) messageType() MessageType     { return m.Type }

func NewPing() Ping { return Ping{Type: TypePing} }

func NewPong() Pong { return Pong{Type: TypePong} }

func NewAuth(token string, workspace uuid.UUID) Auth {
	return Auth{Type: TypeAuth, Token: token, Workspace: workspace}
}

func NewDisconnect() Disconnect { return Disconnect{Type: TypeDisconnect} }

func NewSessionInfo(users []uuid.UUID, locks map[uuid.UUID]uuid.UUID) SessionInfo {
	return SessionInfo{Type: TypeSessionInfo, Users: users, Locks: locks}
}

func NewUserJoined(userID uuid.UUID) UserJoined {
	return UserJoined{Type: TypeUserJoined, UserID: userID}
}

func NewUserLeft(userID uuid.UUID) UserLeft {
	return UserLeft{Type: TypeUserLeft, UserID: userID}
}

func NewServerError(message string) ServerError {
	return ServerError{Type: TypeServerError, Message: message}
}

func NewLock(userID, noteID uuid.UUID) Lock {
	return Lock{Type: TypeLock, UserID: userID, NoteID: noteID}
}

func NewUnlock(userID, noteID uuid.UUID) Unlock {
	return Unlock{Type: TypeUnlock, UserID: userID, NoteID: noteID}
}

func NewCustom(userID uuid.UUID, customType string, payload json.RawMessage) Custom {
	return Custom{Type: TypeCustom, UserID: userID, CustomType: customType, Payload: payload}
}

// Encode serializes a message for the wire.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a wire frame into its concrete message. Frames with an
// unrecognized type tag decode to Unknown rather than an error; only
// malformed JSON or a missing tag fails.
func Decode(data []byte) (Message, error) {
	var envelope struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if envelope.Type == "" {
		return nil, fmt.Errorf("message has no type tag")
	}

	var (
		msg Message
		err error
	)
	switch envelope.Type {
	case TypePing:
		msg = NewPing()
	case TypePong:
		msg = NewPong()
	case TypeDisconnect:
		msg = NewDisconnect()
	case TypeAuth:
		var m Auth
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeSessionInfo:
		var m SessionInfo
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeMessageAck:
		var m MessageAck
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeUserJoined:
		var m UserJoined
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeUserLeft:
		var m UserLeft
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeServerError:
		var m ServerError
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeLock:
		var m Lock
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeUnlock:
		var m Unlock
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeCustom:
		var m Custom
		err = json.Unmarshal(data, &m)
		msg = m
	default:
		msg = Unknown{Type: envelope.Type}
	}
	if err != nil {
		return nil, fmt.Errorf("malformed %s message: %w", envelope.Type, err)
	}
	return msg, nil
}
