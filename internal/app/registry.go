package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nonsequitr/relay/internal/core"
	"github.com/nonsequitr/relay/internal/domain"
)

// ConnectionContext is the per-connection state the core keeps: display name
// and room binding, both stamped once at join time.
type ConnectionContext struct {
	DisplayName string
	RoomCode    domain.RoomCode
}

// RoomInfo is a read-only registry view for the debug listing.
type RoomInfo struct {
	Code         domain.RoomCode `json:"code"`
	Participants int             `json:"participant_count"`
}

// Registry owns the process-wide session state: the room map, connection
// contexts and the voice-profile table. Constructed at process start,
// nothing survives a restart.
type Registry struct {
	mu            sync.RWMutex
	rooms         map[domain.RoomCode]*core.Room
	contexts      map[domain.ConnectionID]ConnectionContext
	voiceProfiles map[domain.ConnectionID]json.RawMessage
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:         make(map[domain.RoomCode]*core.Room),
		contexts:      make(map[domain.ConnectionID]ConnectionContext),
		voiceProfiles: make(map[domain.ConnectionID]json.RawMessage),
	}
}

// RoomExists is a pure lookup with no side effect.
func (r *Registry) RoomExists(code domain.RoomCode) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[code]
	return ok
}

// JoinRoom returns the room for code, inserting an empty one on first use,
// and appends the participant while still holding the registry lock. The
// lookup and the append must be one step: a concurrent leave that empties
// the room deletes it, and an append after that delete would strand the
// joiner in an unregistered room.
func (r *Registry) JoinRoom(code domain.RoomCode, p domain.Participant) (*core.Room, []domain.ParticipantInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		room = core.NewRoom(code)
		r.rooms[code] = room
		log.Info().Str("module", "app.registry").Str("room", string(code)).Msg("created new room")
	}
	roster := room.AddParticipant(p)
	return room, roster
}

func (r *Registry) GetRoom(code domain.RoomCode) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// LeaveRoom removes the participant and, under the same lock, deletes the
// room entry once its roster is empty. Reports false when the code is not
// registered. No empty room stays behind and no occupied room is deleted.
func (r *Registry) LeaveRoom(code domain.RoomCode, id domain.ConnectionID) ([]domain.ParticipantInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return nil, false
	}
	roster := room.RemoveParticipant(id)
	if len(roster) == 0 {
		delete(r.rooms, code)
		log.Info().Str("module", "app.registry").Str("room", string(code)).Msg("deleted empty room")
	}
	return roster, true
}

func (r *Registry) List() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for code, room := range r.rooms {
		out = append(out, RoomInfo{Code: code, Participants: room.ParticipantCount()})
	}
	return out
}

// BindConnection stamps name and room onto the connection id. A repeat join
// overwrites the binding, matching the duplicate-join behavior of the roster.
func (r *Registry) BindConnection(id domain.ConnectionID, name string, code domain.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[id] = ConnectionContext{DisplayName: name, RoomCode: code}
	log.Info().Str("module", "app.registry").Str("id", string(id)).Str("room", string(code)).Msg("bound connection")
}

func (r *Registry) ContextOf(id domain.ConnectionID) (ConnectionContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctx, ok := r.contexts[id]
	return ctx, ok
}

func (r *Registry) SetVoiceProfile(id domain.ConnectionID, data json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voiceProfiles[id] = data
}

func (r *Registry) VoiceProfile(id domain.ConnectionID) (json.RawMessage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.voiceProfiles[id]
	return data, ok
}

// DropConnection removes the connection context and voice profile. Runs on
// every disconnect regardless of room membership.
func (r *Registry) DropConnection(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contexts, id)
	delete(r.voiceProfiles, id)
	log.Info().Str("module", "app.registry").Str("id", string(id)).Msg("dropped connection")
}
