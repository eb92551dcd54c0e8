package ws

import (
	"sync"
)

// DefaultRoom is the single well-known room every authenticated
// connection joins. Multi-room play is an additive extension: the
// manager already keys by room name.
const DefaultRoom = "game_room_1"

// RoomManager maps room name -> connection id -> connection. Invariant:
// a connection is a room member iff it has a registry entry; the gateway
// maintains both under its commit path.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Conn
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]map[string]*Conn)}
}

func (m *RoomManager) Join(room string, c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.rooms[room]
	if members == nil {
		members = make(map[string]*Conn)
		m.rooms[room] = members
	}
	members[c.ID] = c
}

// Leave is idempotent. Empty rooms are dropped from the index.
func (m *RoomManager) Leave(room, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.rooms[room]
	if members == nil {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(m.rooms, room)
	}
}

// Broadcast enqueues data to every member, skipping exclude when set.
// The membership lock is held while enqueueing, so the delivered set is
// an atomic snapshot with respect to concurrent join/leave: a member
// fully joined before the broadcast began is never partially skipped.
// Enqueueing never blocks (per-conn buffered queue), so holding the
// read lock here is cheap. Returns the number of frames queued.
func (m *RoomManager) Broadcast(room string, data []byte, exclude string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for id, c := range m.rooms[room] {
		if id == exclude {
			continue
		}
		if c.enqueue(data) {
			n++
		}
	}
	return n
}

func (m *RoomManager) Members(room string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := m.rooms[room]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

func (m *RoomManager) Count(room string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[room])
}
