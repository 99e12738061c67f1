package realtime

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/saransh000/hackathonpractice/internal/metrics"
)

// Conn is a realtime connection as seen by the hub. Send must not block:
// the websocket implementation enqueues into a buffered channel and reports
// an error when the buffer is full.
type Conn interface {
	ID() string
	Send(Event) error
}

// member is one connection's membership in a room.
type member struct {
	conn        Conn
	participant Participant
}

// Hub routes events between connections grouped into rooms. All state —
// room membership and the presence registry — is owned by a single dispatch
// goroutine draining one command channel, so no locking is needed and
// events broadcast into one room are delivered in emission order.
type Hub struct {
	log      zerolog.Logger
	presence *Registry

	rooms  map[string]map[string]*member // room key -> conn ID -> member
	byConn map[string]string             // conn ID -> room key

	commands chan func()
	done     chan struct{}
}

// NewHub creates a hub. Call Run before using it.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:      log.With().Str("component", "hub").Logger(),
		presence: NewRegistry(),
		rooms:    make(map[string]map[string]*member),
		byConn:   make(map[string]string),
		commands: make(chan func()),
		done:     make(chan struct{}),
	}
}

// Run processes commands until the context is cancelled. It must run in
// exactly one goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("hub shutting down")
			return
		case cmd := <-h.commands:
			cmd()
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// dispatch hands a command to the hub goroutine. Commands sent after
// shutdown are discarded.
func (h *Hub) dispatch(cmd func()) {
	select {
	case h.commands <- cmd:
	case <-h.done:
	}
}

// Join admits a connection into a team's room and records the participant's
// presence. A connection belongs to at most one room: joining while a
// member of another room leaves that room first. Remaining members are
// notified with user-joined (unless this is a duplicate tab of an already
// present user) and the joining connection alone receives the current
// active-users snapshot.
func (h *Hub) Join(c Conn, teamID string, p Participant) {
	h.dispatch(func() { h.handleJoin(c, teamID, p) })
}

// Leave removes a connection from a team's room. The matching presence
// entry is released; remaining members are notified with user-left once the
// user's last connection is gone.
func (h *Hub) Leave(connID, teamID string) {
	h.dispatch(func() { h.handleLeave(connID, RoomKey(teamID), true) })
}

// Broadcast delivers an event to every connection in the team's room except
// the originator. Delivery is fire-and-forget: an empty room is a no-op and
// a failed write to one peer never aborts delivery to the rest.
func (h *Hub) Broadcast(teamID string, ev Event, excludeConnID string) {
	h.dispatch(func() { h.handleBroadcast(RoomKey(teamID), ev, excludeConnID) })
}

// Disconnect reaps whatever room membership a closed connection held.
// Safe to call for connections that never joined a room.
func (h *Hub) Disconnect(connID string) {
	h.dispatch(func() {
		if roomKey, ok := h.byConn[connID]; ok {
			h.handleLeave(connID, roomKey, true)
		}
	})
}

// Participants returns a snapshot of a team room's presence ordered by
// join time. Because commands are processed in order, the snapshot
// reflects every join and leave issued before this call.
func (h *Hub) Participants(teamID string) []Participant {
	reply := make(chan []Participant, 1)
	h.dispatch(func() { reply <- h.presence.List(RoomKey(teamID)) })
	select {
	case participants := <-reply:
		return participants
	case <-h.done:
		return nil
	}
}

// Stats returns the number of active rooms and joined connections.
func (h *Hub) Stats() (rooms, clients int) {
	reply := make(chan [2]int, 1)
	h.dispatch(func() {
		total := 0
		for _, room := range h.rooms {
			total += len(room)
		}
		reply <- [2]int{len(h.rooms), total}
	})
	select {
	case counts := <-reply:
		return counts[0], counts[1]
	case <-h.done:
		return 0, 0
	}
}

func (h *Hub) handleJoin(c Conn, teamID string, p Participant) {
	roomKey := RoomKey(teamID)

	if current, ok := h.byConn[c.ID()]; ok {
		if current == roomKey {
			return
		}
		// Switching teams without an explicit leave-team
		h.handleLeave(c.ID(), current, true)
	}

	room, ok := h.rooms[roomKey]
	if !ok {
		room = make(map[string]*member)
		h.rooms[roomKey] = room
	}
	room[c.ID()] = &member{conn: c, participant: p}
	h.byConn[c.ID()] = roomKey

	joined, count := h.presence.Add(roomKey, p)

	h.log.Info().
		Str("room", roomKey).
		Str("userId", p.UserID).
		Str("userName", p.UserName).
		Int("members", count).
		Msg("participant joined")

	if joined {
		ev, err := NewEvent(EventUserJoined, roomKey, PresencePayload{
			UserID:    p.UserID,
			UserName:  p.UserName,
			Timestamp: p.JoinedAt,
		})
		if err == nil {
			h.deliver(roomKey, ev, c.ID())
		}
	}

	// Presence snapshot goes to the joining connection only
	participants := h.presence.List(roomKey)
	userIDs := make([]string, len(participants))
	for i, participant := range participants {
		userIDs[i] = participant.UserID
	}
	if ev, err := NewEvent(EventActiveUsers, roomKey, userIDs); err == nil {
		h.send(c, ev)
	}

	metrics.RoomsActive.Set(float64(len(h.rooms)))
}

// handleLeave removes a connection from a room. When notify is set and the
// user's last connection left, remaining members receive user-left.
func (h *Hub) handleLeave(connID, roomKey string, notify bool) {
	room, ok := h.rooms[roomKey]
	if !ok {
		return
	}
	m, ok := room[connID]
	if !ok {
		return
	}

	delete(room, connID)
	delete(h.byConn, connID)
	if len(room) == 0 {
		delete(h.rooms, roomKey)
	}

	left := h.presence.Remove(roomKey, m.participant.UserID)

	h.log.Info().
		Str("room", roomKey).
		Str("userId", m.participant.UserID).
		Msg("participant left")

	if notify && left {
		ev, err := NewEvent(EventUserLeft, roomKey, PresencePayload{
			UserID:    m.participant.UserID,
			UserName:  m.participant.UserName,
			Timestamp: nowUTC(),
		})
		if err == nil {
			h.deliver(roomKey, ev, connID)
		}
	}

	metrics.RoomsActive.Set(float64(len(h.rooms)))
}

func (h *Hub) handleBroadcast(roomKey string, ev Event, excludeConnID string) {
	h.deliver(roomKey, ev, excludeConnID)
	metrics.EventsBroadcast.WithLabelValues(ev.Type).Inc()
}

// deliver fans an event out to every room member except excludeConnID.
func (h *Hub) deliver(roomKey string, ev Event, excludeConnID string) {
	room, ok := h.rooms[roomKey]
	if !ok {
		return
	}

	for connID, m := range room {
		if connID == excludeConnID {
			continue
		}
		h.send(m.conn, ev)
	}
}

func (h *Hub) send(c Conn, ev Event) {
	if err := c.Send(ev); err != nil {
		// Slow or dead peer: drop this one delivery, keep fanning out.
		// The connection's heartbeat will reap it if it stays stuck.
		metrics.DeliveriesDropped.Inc()
		h.log.Warn().
			Str("connId", c.ID()).
			Str("event", ev.Type).
			Err(err).
			Msg("dropped delivery")
	}
}
