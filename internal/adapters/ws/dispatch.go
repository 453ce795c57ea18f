package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/nonsequitr/relay/internal/domain"
)

func (ctl *Controller) dispatch(id domain.ConnectionID, c *wsConn, data []byte) {
	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch env.Type {
	case "check-room":
		ctl.handleCheckRoom(id, c, env.Payload)
	case "join-room":
		ctl.handleJoin(id, c, env.Payload)
	case "new-transcript":
		ctl.handleTranscript(id, c, env.Payload)
	case "request-callback":
		ctl.Sessions.RequestCallback(id)
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) handleCheckRoom(id domain.ConnectionID, c *wsConn, payload []byte) {
	var p struct {
		RoomCode string `json:"roomCode"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad check-room payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Sessions.CheckRoom(id, domain.RoomCode(p.RoomCode))
}

func (ctl *Controller) handleJoin(id domain.ConnectionID, c *wsConn, payload []byte) {
	var p struct {
		UserName  string          `json:"userName"`
		RoomCode  string          `json:"roomCode"`
		VoiceData json.RawMessage `json:"voiceData,omitempty"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if len(p.UserName) > domain.MaxDisplayNameLen {
		p.UserName = p.UserName[:domain.MaxDisplayNameLen]
	}

	// Subscribe before the session broadcasts so the joiner sees its own
	// roster update.
	code := domain.RoomCode(p.RoomCode)
	ctl.Hub.Subscribe(id, code)
	ctl.Sessions.Join(id, p.UserName, code, p.VoiceData)
}

func (ctl *Controller) handleTranscript(id domain.ConnectionID, c *wsConn, payload []byte) {
	var p struct {
		Original          string  `json:"original"`
		Translated        string  `json:"translated"`
		ChangedIndices    []int   `json:"changedIndices"`
		SpeakerConfidence float64 `json:"speakerConfidence"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad transcript payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Sessions.Transcript(id, p.Original, p.Translated, p.ChangedIndices, p.SpeakerConfidence)
}

func (ctl *Controller) sendError(c *wsConn, msg string) {
	b, err := json.Marshal(envelope{Type: "error", Payload: map[string]string{"error": msg}})
	if err != nil {
		return
	}
	_ = c.TrySend(b)
}
