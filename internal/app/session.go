package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nonsequitr/relay/internal/core"
	"github.com/nonsequitr/relay/internal/domain"
)

// SessionManager handles every inbound event and fans results out through
// the Router capability. Missing state is a no-op throughout; no handler
// surfaces an error to the transport.
type SessionManager struct {
	Registry *Registry
	Router   core.Router
	Rand     core.Rand
	Limiter  *CallbackLimiter

	now func() time.Time
}

func NewSessionManager(reg *Registry, router core.Router, rnd core.Rand, limiter *CallbackLimiter) *SessionManager {
	return &SessionManager{
		Registry: reg,
		Router:   router,
		Rand:     rnd,
		Limiter:  limiter,
		now:      time.Now,
	}
}

type roomStatus struct {
	Exists   bool            `json:"exists"`
	RoomCode domain.RoomCode `json:"roomCode"`
}

type participantJoined struct {
	Participants   []domain.ParticipantInfo `json:"participants"`
	NewParticipant domain.ParticipantInfo   `json:"newParticipant"`
}

type participantLeft struct {
	UserName     string                   `json:"userName"`
	Participants []domain.ParticipantInfo `json:"participants"`
}

type callbackMessage struct {
	Text      string `json:"text"`
	Reference string `json:"reference"`
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
}

// CheckRoom answers a pure existence query, to the requester only.
func (m *SessionManager) CheckRoom(id domain.ConnectionID, code domain.RoomCode) {
	exists := m.Registry.RoomExists(code)
	log.Info().Str("module", "app.session").Str("room", string(code)).Bool("exists", exists).Msg("room check")
	m.Router.SendToOne(id, core.EventRoomStatus, roomStatus{Exists: exists, RoomCode: code})
}

// Join creates or fetches the room, appends the participant, stores the
// voice profile if one came along, broadcasts the updated roster to the
// whole room and replays the current history to the joiner only.
func (m *SessionManager) Join(id domain.ConnectionID, userName string, code domain.RoomCode, voiceData json.RawMessage) {
	p := domain.Participant{ConnectionID: id, DisplayName: userName, VoiceProfile: voiceData}
	room, roster := m.Registry.JoinRoom(code, p)
	if len(voiceData) > 0 {
		m.Registry.SetVoiceProfile(id, voiceData)
	}
	m.Registry.BindConnection(id, userName, code)

	m.Router.SendToGroup(code, core.EventParticipantJoined, participantJoined{
		Participants:   roster,
		NewParticipant: p.Info(),
	})
	m.Router.SendToOne(id, core.EventHistory, room.History())

	log.Info().Str("module", "app.session").Str("room", string(code)).Str("name", userName).Int("participants", len(roster)).Msg("joined room")
}

// Transcript records one message, updates the topic index and broadcasts
// the message to everyone in the room, sender included. Events from a
// connection with no bound room are dropped silently.
func (m *SessionManager) Transcript(id domain.ConnectionID, original, translated string, changed []int, speakerConfidence float64) {
	ctx, ok := m.Registry.ContextOf(id)
	if !ok {
		return
	}
	room, ok := m.Registry.GetRoom(ctx.RoomCode)
	if !ok {
		return
	}

	msg := domain.NewMessage(m.now(), id, ctx.DisplayName, original, translated, changed)
	room.AppendMessage(msg)
	room.LearnTopics(original, translated, changed)

	m.Router.SendToGroup(ctx.RoomCode, core.EventNewMessage, msg)

	log.Debug().Str("module", "app.session").Str("room", string(ctx.RoomCode)).Str("name", ctx.DisplayName).Float64("confidence", speakerConfidence).Int("topics", room.TopicCount()).Msg("transcript relayed")
}

// RequestCallback picks a random learned topic and a random template and
// broadcasts the interjection to the whole room. An empty topic index
// produces nothing, which is the normal outcome early in a conversation.
func (m *SessionManager) RequestCallback(id domain.ConnectionID) {
	ctx, ok := m.Registry.ContextOf(id)
	if !ok {
		return
	}
	room, ok := m.Registry.GetRoom(ctx.RoomCode)
	if !ok {
		return
	}
	if m.Limiter != nil && !m.Limiter.Allow(id) {
		log.Warn().Str("module", "app.session").Str("id", string(id)).Msg("callback request rate limited")
		return
	}

	_, translated, ok := room.PickTopic(m.Rand)
	if !ok {
		return
	}

	m.Router.SendToGroup(ctx.RoomCode, core.EventCallback, callbackMessage{
		Text:      renderCallback(m.Rand, translated),
		Reference: translated,
		Speaker:   ctx.DisplayName,
		Timestamp: domain.Timestamp(m.now()),
	})
}

// Disconnect removes the participant from their room if any, notifies the
// remaining members, deletes the room once empty and unconditionally drops
// the connection's voice profile and context. Terminal per connection.
func (m *SessionManager) Disconnect(id domain.ConnectionID) {
	ctx, ok := m.Registry.ContextOf(id)
	if ok && ctx.RoomCode != "" {
		if roster, ok := m.Registry.LeaveRoom(ctx.RoomCode, id); ok {
			m.Router.SendToGroup(ctx.RoomCode, core.EventParticipantLeft, participantLeft{
				UserName:     ctx.DisplayName,
				Participants: roster,
			})
			log.Info().Str("module", "app.session").Str("room", string(ctx.RoomCode)).Str("name", ctx.DisplayName).Int("remaining", len(roster)).Msg("left room")
		}
	}
	m.Registry.DropConnection(id)
	if m.Limiter != nil {
		m.Limiter.Forget(id)
	}
}
