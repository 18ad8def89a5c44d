package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub owns the connection set, the presence registry and the rooms for one
// server process. It is lifecycle-scoped and injected; tests and multiple
// server instances each get their own.
//
// Delivery is fire and forget: a broadcast never blocks on a recipient and
// a full outbox drops the frame for that member only.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]*Connection
	presence *Registry
	rooms    *Rooms
	log      *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		conns:    make(map[string]*Connection),
		presence: NewRegistry(),
		rooms:    NewRooms(),
		log:      log,
	}
}

func (h *Hub) Presence() *Registry { return h.presence }
func (h *Hub) Rooms() *Rooms       { return h.rooms }

// Add tracks a freshly upgraded connection. It holds no identity yet; that
// arrives with the join event.
func (h *Hub) Add(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID()] = conn
	h.mu.Unlock()
	h.log.Info("connection opened",
		zap.String("conn_id", conn.ID()),
		zap.String("user_id", conn.UserID()))
}

// Remove purges the connection from presence, rooms and the connection set,
// then closes its outbox. After Remove returns, no lookup or broadcast
// observes the connection.
func (h *Hub) Remove(conn *Connection) {
	h.presence.RemoveConn(conn.ID())
	h.rooms.RemoveConn(conn.ID())

	h.mu.Lock()
	delete(h.conns, conn.ID())
	conn.Close()
	h.mu.Unlock()

	h.log.Info("connection closed", zap.String("conn_id", conn.ID()))
}

// BroadcastRoom delivers the event to every current member of the room,
// optionally excluding one connection (usually the sender).
func (h *Hub) BroadcastRoom(room, event string, payload any, excludeConnID string) {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		h.log.Error("marshal broadcast", zap.String("event", event), zap.Error(err))
		return
	}

	members := h.rooms.Members(room)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, connID := range members {
		if connID == excludeConnID {
			continue
		}
		conn, ok := h.conns[connID]
		if !ok {
			// Member disconnected between snapshot and delivery; skip.
			continue
		}
		if !conn.push(frame) {
			h.log.Warn("outbox full, frame dropped",
				zap.String("conn_id", connID), zap.String("event", event))
		}
	}
}

// BroadcastAll delivers the event to every live connection. Used for the
// global location and availability feeds.
func (h *Hub) BroadcastAll(event string, payload any, excludeConnID string) {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		h.log.Error("marshal broadcast", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID, conn := range h.conns {
		if connID == excludeConnID {
			continue
		}
		if !conn.push(frame) {
			h.log.Warn("outbox full, frame dropped",
				zap.String("conn_id", connID), zap.String("event", event))
		}
	}
}

// EmitTo delivers the event to a single connection. Reports false when the
// connection is gone or its outbox is full.
func (h *Hub) EmitTo(connID, event string, payload any) bool {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		h.log.Error("marshal emit", zap.String("event", event), zap.Error(err))
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[connID]
	if !ok {
		return false
	}
	return conn.push(frame)
}

// Stats summarizes the live state for the operational endpoint.
type Stats struct {
	Connections int `json:"connections"`
	Identities  int `json:"identities"`
	Rooms       int `json:"rooms"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	conns := len(h.conns)
	h.mu.RUnlock()
	return Stats{
		Connections: conns,
		Identities:  h.presence.IdentityCount(),
		Rooms:       h.rooms.RoomCount(),
	}
}

func marshalEnvelope(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
