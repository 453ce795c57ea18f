package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nonsequitr/relay/internal/domain"
)

// envelope is the outbound wire frame: event name plus payload.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub tracks live connections and their room subscription and implements
// core.Router over them. Subscription here is delivery-side bookkeeping
// only; the session layer keeps the authoritative roster.
type Hub struct {
	mu     sync.RWMutex
	conns  map[domain.ConnectionID]*wsConn
	groups map[domain.RoomCode]map[domain.ConnectionID]struct{}
	rooms  map[domain.ConnectionID]domain.RoomCode
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[domain.ConnectionID]*wsConn),
		groups: make(map[domain.RoomCode]map[domain.ConnectionID]struct{}),
		rooms:  make(map[domain.ConnectionID]domain.RoomCode),
	}
}

func (h *Hub) Register(id domain.ConnectionID, c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = c
}

// Unregister drops the connection and its group membership. Safe to call
// for an id that was never registered.
func (h *Hub) Unregister(id domain.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if code, ok := h.rooms[id]; ok {
		h.leaveLocked(id, code)
	}
	delete(h.conns, id)
}

// Subscribe moves the connection into a delivery group. A connection is in
// at most one group; a repeat subscribe replaces the previous one.
func (h *Hub) Subscribe(id domain.ConnectionID, code domain.RoomCode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.rooms[id]; ok && prev != code {
		h.leaveLocked(id, prev)
	}
	set, ok := h.groups[code]
	if !ok {
		set = make(map[domain.ConnectionID]struct{})
		h.groups[code] = set
	}
	set[id] = struct{}{}
	h.rooms[id] = code
}

func (h *Hub) leaveLocked(id domain.ConnectionID, code domain.RoomCode) {
	if set, ok := h.groups[code]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(h.groups, code)
		}
	}
	delete(h.rooms, id)
}

// SendToOne delivers to a single connection, best-effort.
func (h *Hub) SendToOne(id domain.ConnectionID, event string, payload any) {
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.push(c, event, payload)
}

// SendToGroup delivers to every subscribed connection independently; a slow
// or gone recipient never blocks the others.
func (h *Hub) SendToGroup(code domain.RoomCode, event string, payload any) {
	h.mu.RLock()
	members := make([]*wsConn, 0, len(h.groups[code]))
	for id := range h.groups[code] {
		if c, ok := h.conns[id]; ok {
			members = append(members, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range members {
		h.push(c, event, payload)
	}
}

func (h *Hub) push(c *wsConn, event string, payload any) {
	b, err := json.Marshal(envelope{Type: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("module", "ws.hub").Str("event", event).Msg("marshal event")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "ws.hub").Str("event", event).Msg("dropped frame")
	}
}
