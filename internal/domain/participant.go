// Package domain contains entity types without logic, just meta-data.
package domain

import "encoding/json"

const MaxDisplayNameLen = 36

type (
	// ConnectionID identifies one transport connection. Opaque to the core.
	ConnectionID string
	// RoomCode is the case-sensitive key a room is joined by. The core does
	// no format validation; codes are whatever the client supplies.
	RoomCode string
)

// Participant is one roster entry. Owned exclusively by its room.
type Participant struct {
	ConnectionID ConnectionID
	DisplayName  string
	VoiceProfile json.RawMessage
}

// ParticipantInfo is the wire view of a roster entry (no voice data).
type ParticipantInfo struct {
	Name string       `json:"name"`
	ID   ConnectionID `json:"id"`
}

func (p Participant) Info() ParticipantInfo {
	return ParticipantInfo{Name: p.DisplayName, ID: p.ConnectionID}
}
