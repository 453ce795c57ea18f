package core

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nonsequitr/relay/internal/domain"
)

// HistoryLimit bounds the conversation history per room; the oldest entry
// is evicted first.
const HistoryLimit = 50

// Room is a threadsafe in-memory room: ordered roster, bounded history and
// the key-topic index derived from transcripts. It never touches transport
// resources.
type Room struct {
	code domain.RoomCode

	mu           sync.RWMutex
	participants []domain.Participant
	history      []domain.Message
	keyTopics    map[string]string
}

func NewRoom(code domain.RoomCode) *Room {
	return &Room{
		code:      code,
		keyTopics: make(map[string]string),
	}
}

func (r *Room) Code() domain.RoomCode { return r.code }

func (r *Room) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// AddParticipant appends to the roster and returns the roster after the
// append. Duplicate display names are allowed; nothing is deduplicated.
func (r *Room) AddParticipant(p domain.Participant) []domain.ParticipantInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants = append(r.participants, p)
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("id", string(p.ConnectionID)).Str("name", p.DisplayName).Msg("participant added")
	return r.rosterLocked()
}

// RemoveParticipant drops the entry with the matching connection id and
// returns the remaining roster in its original order. Absent id is a no-op.
func (r *Room) RemoveParticipant(id domain.ConnectionID) []domain.ParticipantInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.participants[:0]
	for _, p := range r.participants {
		if p.ConnectionID != id {
			kept = append(kept, p)
		}
	}
	r.participants = kept
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("id", string(id)).Msg("participant removed")
	return r.rosterLocked()
}

func (r *Room) Roster() []domain.ParticipantInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rosterLocked()
}

func (r *Room) rosterLocked() []domain.ParticipantInfo {
	out := make([]domain.ParticipantInfo, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p.Info())
	}
	return out
}

// AppendMessage pushes onto the history and evicts from the front past
// HistoryLimit. Remaining entries keep their arrival order.
func (r *Room) AppendMessage(m domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, m)
	if n := len(r.history); n > HistoryLimit {
		r.history = append(r.history[:0], r.history[n-HistoryLimit:]...)
	}
}

// History returns a snapshot copy; callers may hold it across later appends.
func (r *Room) History() []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Message, len(r.history))
	copy(out, r.history)
	return out
}

// LearnTopics updates the key-topic index from one transcript. Both texts
// are lowercased and split on whitespace; for every changed index that has
// a word in both sequences the pair is recorded, last write wins. The
// position alignment of the two tokenizations is the transcript producer's
// contract, not checked here; out-of-range indices are skipped.
func (r *Room) LearnTopics(original, translated string, changed []int) {
	words := strings.Fields(strings.ToLower(original))
	translatedWords := strings.Fields(strings.ToLower(translated))

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, idx := range changed {
		if idx < 0 || idx >= len(words) || idx >= len(translatedWords) {
			continue
		}
		r.keyTopics[words[idx]] = translatedWords[idx]
	}
}

func (r *Room) TopicCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keyTopics)
}

// PickTopic selects one recorded pair uniformly via the supplied source.
// Entries are ordered by original word so a pinned source picks a stable
// pair. Reports false when nothing has been learned yet.
func (r *Room) PickTopic(rnd Rand) (original, translated string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.keyTopics) == 0 {
		return "", "", false
	}
	keys := make([]string, 0, len(r.keyTopics))
	for k := range r.keyTopics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	k := keys[rnd.IntN(len(keys))]
	return k, r.keyTopics[k], true
}
