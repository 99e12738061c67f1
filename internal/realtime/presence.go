package realtime

import (
	"sort"
	"time"
)

// Participant is one user present in a room.
type Participant struct {
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"`
	JoinedAt time.Time `json:"joinedAt"`
}

// presenceEntry reference-counts joins so a user with several tabs holds
// exactly one presence entry until the last tab leaves.
type presenceEntry struct {
	participant Participant
	refs        int
}

// Registry tracks, per room, which participants are currently joined.
//
// Presence is keyed by user ID, not by connection: duplicate tabs collapse
// to a single entry. The registry is not safe for concurrent use; all
// mutation happens on the hub's dispatch goroutine.
type Registry struct {
	rooms map[string]map[string]*presenceEntry
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]*presenceEntry)}
}

// Add records a participant joining a room. The boolean is true when the
// user was not previously present (a duplicate tab returns false). The int
// is the room's member count after the add.
func (r *Registry) Add(roomID string, p Participant) (bool, int) {
	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[string]*presenceEntry)
		r.rooms[roomID] = room
	}

	entry, ok := room[p.UserID]
	if ok {
		entry.refs++
		return false, len(room)
	}

	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	room[p.UserID] = &presenceEntry{participant: p, refs: 1}
	return true, len(room)
}

// Remove records a participant leaving a room. The boolean is true when the
// user's last reference was released and the entry dropped. Removing an
// absent participant is a no-op: disconnect races are expected.
func (r *Registry) Remove(roomID, userID string) bool {
	room, ok := r.rooms[roomID]
	if !ok {
		return false
	}

	entry, ok := room[userID]
	if !ok {
		return false
	}

	entry.refs--
	if entry.refs > 0 {
		return false
	}

	delete(room, userID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
	return true
}

// List returns a snapshot of a room's participants ordered by join time.
func (r *Registry) List(roomID string) []Participant {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}

	participants := make([]Participant, 0, len(room))
	for _, entry := range room {
		participants = append(participants, entry.participant)
	}
	sort.Slice(participants, func(i, j int) bool {
		if participants[i].JoinedAt.Equal(participants[j].JoinedAt) {
			return participants[i].UserID < participants[j].UserID
		}
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})
	return participants
}

// IsEmpty reports whether a room has no participants.
func (r *Registry) IsEmpty(roomID string) bool {
	return len(r.rooms[roomID]) == 0
}

// RoomCount returns the number of rooms with at least one participant.
func (r *Registry) RoomCount() int {
	return len(r.rooms)
}
