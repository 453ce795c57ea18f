package core

import "github.com/nonsequitr/relay/internal/domain"

// Wire event names shared between the session layer and the transport.
const (
	EventRoomStatus        = "room-status"
	EventParticipantJoined = "participant-joined"
	EventHistory           = "conversation-history"
	EventNewMessage        = "new-message"
	EventCallback          = "callback-message"
	EventParticipantLeft   = "participant-left"
)

// Router is the delivery capability the session layer fans out through.
// Owned by the adapter; delivery is fire-and-forget and best-effort, a
// recipient that is gone or slow simply misses the event.
type Router interface {
	SendToOne(id domain.ConnectionID, event string, payload any)
	SendToGroup(code domain.RoomCode, event string, payload any)
}

// Rand supplies the randomness for callback selection, pluggable so tests
// can pin the choice.
type Rand interface {
	IntN(n int) int
}
