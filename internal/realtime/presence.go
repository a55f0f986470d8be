package realtime

import "sync"

// Presence tracks which users hold at least one live websocket connection on
// this API instance. Each user gets their own entry with its own lock, so
// connect/disconnect churn for one user never contends with lookups for
// another. It is purely in-memory; a multi-instance deployment would need a
// shared store, which is an accepted limitation for now.
type Presence struct {
	entries sync.Map // userID -> *presenceEntry
}

type presenceEntry struct {
	mtx sync.RWMutex
	// conns is nil once the entry is retired: the last connection left and
	// the entry was removed from the map. Writers that loaded it before the
	// removal must start over with a fresh entry.
	conns map[*Connection]struct{}
}

// NewPresence builds an empty presence tracker.
func NewPresence() *Presence {
	return &Presence{}
}

// Add registers a connection for its user.
func (p *Presence) Add(conn *Connection) {
	if conn == nil {
		return
	}
	for {
		actual, _ := p.entries.LoadOrStore(conn.UserID(), &presenceEntry{
			conns: make(map[*Connection]struct{}),
		})
		entry := actual.(*presenceEntry)
		entry.mtx.Lock()
		if entry.conns == nil {
			// Lost a race with the retiring Remove; the map no longer holds
			// this entry.
			entry.mtx.Unlock()
			continue
		}
		entry.conns[conn] = struct{}{}
		entry.mtx.Unlock()
		return
	}
}

// Remove drops a connection; the user goes offline when their last
// connection is removed.
func (p *Presence) Remove(conn *Connection) {
	if conn == nil {
		return
	}
	actual, ok := p.entries.Load(conn.UserID())
	if !ok {
		return
	}
	entry := actual.(*presenceEntry)
	entry.mtx.Lock()
	defer entry.mtx.Unlock()
	if entry.conns == nil {
		return
	}
	delete(entry.conns, conn)
	if len(entry.conns) == 0 {
		entry.conns = nil
		p.entries.Delete(conn.UserID())
	}
}

// IsOnline reports whether the user has at least one live connection.
func (p *Presence) IsOnline(userID string) bool {
	actual, ok := p.entries.Load(userID)
	if !ok {
		return false
	}
	entry := actual.(*presenceEntry)
	entry.mtx.RLock()
	defer entry.mtx.RUnlock()
	return len(entry.conns) > 0
}

// ConnectionsOf returns the user's live connections.
func (p *Presence) ConnectionsOf(userID string) []*Connection {
	actual, ok := p.entries.Load(userID)
	if !ok {
		return nil
	}
	entry := actual.(*presenceEntry)
	entry.mtx.RLock()
	defer entry.mtx.RUnlock()
	out := make([]*Connection, 0, len(entry.conns))
	for conn := range entry.conns {
		out = append(out, conn)
	}
	return out
}
