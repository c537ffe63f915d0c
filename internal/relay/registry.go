package relay

import (
	"sync"

	"github.com/teamboard-dev/teamboard-server/internal/logger"
)

// Sender is the connection surface the relay needs. The websocket layer
// implements it; tests substitute an in-memory double.
type Sender interface {
	ID() string
	Send(data []byte) error
}

// Registry maps topic ids to the live connections viewing them. Rooms are
// created on first join and deleted with the last member; nothing here
// outlives a connection. All mutations are serialized by one lock, so
// concurrent joins and leaves to the same room cannot lose updates.
type Registry struct {
	mu sync.RWMutex
	// topic id -> conn id -> sender
	rooms map[string]map[string]Sender
	// conn id -> topic ids, for O(1) disconnect cleanup
	memberships map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:       make(map[string]map[string]Sender),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to the topic room. Joining twice is the same as
// joining once. The topic id is never checked against the store: rooms
// exist by demand, not by record.
func (r *Registry) Join(conn Sender, topicID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[topicID]
	if !ok {
		room = make(map[string]Sender)
		r.rooms[topicID] = room
	}
	room[conn.ID()] = conn

	joined, ok := r.memberships[conn.ID()]
	if !ok {
		joined = make(map[string]struct{})
		r.memberships[conn.ID()] = joined
	}
	joined[topicID] = struct{}{}

	logger.DebugF("[%s] Joined topic %s, room size %d", conn.ID(), topicID, len(room))
}

// Leave removes the connection from the topic room. No-op when the
// connection is not a member.
func (r *Registry) Leave(connID, topicID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(connID, topicID)
}

func (r *Registry) leaveLocked(connID, topicID string) {
	room, ok := r.rooms[topicID]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(r.rooms, topicID)
		logger.DebugF("Room %s removed (empty)", topicID)
	}

	if joined, ok := r.memberships[connID]; ok {
		delete(joined, topicID)
		if len(joined) == 0 {
			delete(r.memberships, connID)
		}
	}
}

// RemoveConnection strips the connection from every room it joined. Safe
// to call for connections that never joined anything, and idempotent.
func (r *Registry) RemoveConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for topicID := range r.memberships[connID] {
		r.leaveLocked(connID, topicID)
	}
	delete(r.memberships, connID)
}

// BroadcastTo delivers data to every member of the room except senderID
// and returns how many members were reached. A failed send is logged and
// skipped; the member re-syncs over REST.
func (r *Registry) BroadcastTo(topicID, senderID string, data []byte) int {
	r.mu.RLock()
	room := r.rooms[topicID]
	receivers := make([]Sender, 0, len(room))
	for id, conn := range room {
		if id != senderID {
			receivers = append(receivers, conn)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range receivers {
		if err := conn.Send(data); err != nil {
			logger.WarnF("[%s] Fail to send event, details: %v", conn.ID(), err)
			continue
		}
		delivered++
	}
	return delivered
}

// IsMember reports current room membership.
func (r *Registry) IsMember(connID, topicID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[topicID][connID]
	return ok
}

// Stats returns the live room and connection counts.
func (r *Registry) Stats() (rooms, connections int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms), len(r.memberships)
}
