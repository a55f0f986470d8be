package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Hub owns journey fan-out groups and user-directed delivery. Broadcast is
// fire-and-forget: each recipient either takes the frame into its buffer or
// misses it, and the hub never waits.
type Hub struct {
	presence *Presence

	mtx    sync.RWMutex
	groups map[uuid.UUID]map[*Connection]struct{}
}

// NewHub builds a hub around the given presence tracker.
func NewHub(presence *Presence) *Hub {
	return &Hub{
		presence: presence,
		groups:   make(map[uuid.UUID]map[*Connection]struct{}),
	}
}

// Presence exposes the tracker backing this hub.
func (h *Hub) Presence() *Presence {
	return h.presence
}

// Register announces a new connection; the user becomes online.
func (h *Hub) Register(conn *Connection) {
	h.presence.Add(conn)
}

// Unregister removes the connection from presence and every group.
func (h *Hub) Unregister(conn *Connection) {
	if conn == nil {
		return
	}
	h.presence.Remove(conn)
	conn.Close()

	h.mtx.Lock()
	defer h.mtx.Unlock()
	for journeyID, group := range h.groups {
		delete(group, conn)
		if len(group) == 0 {
			delete(h.groups, journeyID)
		}
	}
}

// Subscribe adds the connection to a journey's fan-out group.
func (h *Hub) Subscribe(conn *Connection, journeyID uuid.UUID) {
	if conn == nil || journeyID == uuid.Nil {
		return
	}
	h.mtx.Lock()
	defer h.mtx.Unlock()
	group, ok := h.groups[journeyID]
	if !ok {
		group = make(map[*Connection]struct{})
		h.groups[journeyID] = group
	}
	group[conn] = struct{}{}
}

// Unsubscribe removes the connection from a journey's fan-out group.
func (h *Hub) Unsubscribe(conn *Connection, journeyID uuid.UUID) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	group, ok := h.groups[journeyID]
	if !ok {
		return
	}
	delete(group, conn)
	if len(group) == 0 {
		delete(h.groups, journeyID)
	}
}

// Broadcast pushes the frame to every connection subscribed to the journey.
// Returns how many connections accepted it.
func (h *Hub) Broadcast(journeyID uuid.UUID, frame Frame) int {
	return h.BroadcastExcept(journeyID, frame, "")
}

// BroadcastExcept pushes the frame to every subscribed connection except those
// belonging to skipUserID. Used when one subscriber gets their own variant of
// the frame through a direct send instead.
func (h *Hub) BroadcastExcept(journeyID uuid.UUID, frame Frame, skipUserID string) int {
	h.mtx.RLock()
	conns := make([]*Connection, 0, len(h.groups[journeyID]))
	for conn := range h.groups[journeyID] {
		if skipUserID != "" && conn.UserID() == skipUserID {
			continue
		}
		conns = append(conns, conn)
	}
	h.mtx.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if conn.Enqueue(frame) {
			delivered++
		}
	}
	return delivered
}

// SendToUser pushes the frame to every live connection of the user. Returns
// true when at least one connection accepted it.
func (h *Hub) SendToUser(userID string, frame Frame) bool {
	delivered := false
	for _, conn := range h.presence.ConnectionsOf(userID) {
		if conn.Enqueue(frame) {
			delivered = true
		}
	}
	return delivered
}
