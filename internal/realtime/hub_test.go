package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	id   string
	fail bool

	mu   sync.Mutex
	sent []Event
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(ev Event) error {
	if m.fail {
		return errors.New("send buffer full")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, ev)
	return nil
}

func (m *mockConn) getSent() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.sent))
	copy(out, m.sent)
	return out
}

// eventsOfType filters a connection's received events by type.
func (m *mockConn) eventsOfType(eventType string) []Event {
	var out []Event
	for _, ev := range m.getSent() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.Wait()
	})
	return hub
}

// flush blocks until every previously dispatched command has run.
func flush(hub *Hub) {
	hub.Stats()
}

func join(hub *Hub, c Conn, teamID, userID, userName string) {
	hub.Join(c, teamID, Participant{UserID: userID, UserName: userName})
}

func TestHub_BroadcastSkipsSender(t *testing.T) {
	hub := newTestHub(t)
	alice := &mockConn{id: "c1"}
	bob := &mockConn{id: "c2"}

	join(hub, alice, "t1", "u1", "Alice")
	join(hub, bob, "t1", "u2", "Bob")

	ev, err := NewEvent(EventTaskUpdated, RoomKey("t1"), nil)
	require.NoError(t, err)
	hub.Broadcast("t1", ev, alice.ID())
	flush(hub)

	assert.Empty(t, alice.eventsOfType(EventTaskUpdated))
	require.Len(t, bob.eventsOfType(EventTaskUpdated), 1)
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	hub := newTestHub(t)
	alice := &mockConn{id: "c1"}
	bob := &mockConn{id: "c2"}
	carol := &mockConn{id: "c3"}

	join(hub, alice, "t1", "u1", "Alice")
	join(hub, bob, "t1", "u2", "Bob")
	join(hub, carol, "t2", "u3", "Carol")

	ev, err := NewEvent(EventColumnsUpdated, RoomKey("t1"), nil)
	require.NoError(t, err)
	hub.Broadcast("t1", ev, alice.ID())
	flush(hub)

	assert.Len(t, bob.eventsOfType(EventColumnsUpdated), 1)
	assert.Empty(t, carol.eventsOfType(EventColumnsUpdated))
}

func TestHub_BroadcastToEmptyRoomIsNoOp(t *testing.T) {
	hub := newTestHub(t)

	ev, err := NewEvent(EventTaskUpdated, RoomKey("empty"), nil)
	require.NoError(t, err)
	hub.Broadcast("empty", ev, "nobody")
	flush(hub)

	rooms, clients := hub.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, clients)
}

func TestHub_DeliveryOrderIsPreserved(t *testing.T) {
	hub := newTestHub(t)
	sender := &mockConn{id: "c1"}
	receiver := &mockConn{id: "c2"}

	join(hub, sender, "t1", "u1", "Alice")
	join(hub, receiver, "t1", "u2", "Bob")

	payloads := []string{"a", "b", "c", "d", "e"}
	for _, p := range payloads {
		ev, err := NewEvent(EventTypingUpdate, RoomKey("t1"), TypingPayload{TeamID: "t1", UserName: p})
		require.NoError(t, err)
		hub.Broadcast("t1", ev, sender.ID())
	}
	flush(hub)

	got := receiver.eventsOfType(EventTypingUpdate)
	require.Len(t, got, len(payloads))
	for i, ev := range got {
		var p TypingPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &p))
		assert.Equal(t, payloads[i], p.UserName)
	}
}

func TestHub_JoinNotifiesPeersAndSnapshotsJoiner(t *testing.T) {
	hub := newTestHub(t)
	alice := &mockConn{id: "c1"}
	bob := &mockConn{id: "c2"}

	join(hub, alice, "t1", "u1", "Alice")
	join(hub, bob, "t1", "u2", "Bob")
	flush(hub)

	// Alice was already in the room, so she hears about Bob
	joinedEvents := alice.eventsOfType(EventUserJoined)
	require.Len(t, joinedEvents, 1)
	var p PresencePayload
	require.NoError(t, json.Unmarshal(joinedEvents[0].Payload, &p))
	assert.Equal(t, "u2", p.UserID)
	assert.Equal(t, "Bob", p.UserName)

	// Bob alone gets the roster, and it includes both users
	assert.Len(t, alice.eventsOfType(EventActiveUsers), 1) // only from her own join
	snapshots := bob.eventsOfType(EventActiveUsers)
	require.Len(t, snapshots, 1)
	var userIDs []string
	require.NoError(t, json.Unmarshal(snapshots[0].Payload, &userIDs))
	assert.Equal(t, []string{"u1", "u2"}, userIDs)

	// Bob never hears about his own join
	assert.Empty(t, bob.eventsOfType(EventUserJoined))
}

func TestHub_LeaveNotifiesRemaining(t *testing.T) {
	hub := newTestHub(t)
	alice := &mockConn{id: "c1"}
	bob := &mockConn{id: "c2"}

	join(hub, alice, "t1", "u1", "Alice")
	join(hub, bob, "t1", "u2", "Bob")
	hub.Leave(bob.ID(), "t1")
	flush(hub)

	leftEvents := alice.eventsOfType(EventUserLeft)
	require.Len(t, leftEvents, 1)
	var p PresencePayload
	require.NoError(t, json.Unmarshal(leftEvents[0].Payload, &p))
	assert.Equal(t, "u2", p.UserID)

	participants := hub.Participants("t1")
	require.Len(t, participants, 1)
	assert.Equal(t, "u1", participants[0].UserID)
}

func TestHub_DuplicateTabsCollapseInPresence(t *testing.T) {
	hub := newTestHub(t)
	alice := &mockConn{id: "c1"}
	tab1 := &mockConn{id: "c2"}
	tab2 := &mockConn{id: "c3"}

	join(hub, alice, "t1", "u1", "Alice")
	join(hub, tab1, "t1", "u2", "Bob")
	join(hub, tab2, "t1", "u2", "Bob")
	flush(hub)

	// One user-joined for Bob despite two tabs
	assert.Len(t, alice.eventsOfType(EventUserJoined), 1)
	require.Len(t, hub.Participants("t1"), 2)

	// Closing one tab keeps Bob present and stays silent
	hub.Leave(tab1.ID(), "t1")
	flush(hub)
	assert.Empty(t, alice.eventsOfType(EventUserLeft))
	assert.Len(t, hub.Participants("t1"), 2)

	// Closing the last tab announces the departure
	hub.Leave(tab2.ID(), "t1")
	flush(hub)
	assert.Len(t, alice.eventsOfType(EventUserLeft), 1)
	assert.Len(t, hub.Participants("t1"), 1)
}

func TestHub_DisconnectReapsMembership(t *testing.T) {
	hub := newTestHub(t)
	alice := &mockConn{id: "c1"}
	bob := &mockConn{id: "c2"}

	join(hub, alice, "t1", "u1", "Alice")
	join(hub, bob, "t1", "u2", "Bob")

	// Abrupt close: no leave-team was ever sent
	hub.Disconnect(bob.ID())
	flush(hub)

	assert.Len(t, alice.eventsOfType(EventUserLeft), 1)
	require.Len(t, hub.Participants("t1"), 1)

	// Reconnect with a fresh connection yields exactly one presence entry
	bob2 := &mockConn{id: "c3"}
	join(hub, bob2, "t1", "u2", "Bob")
	flush(hub)
	assert.Len(t, hub.Participants("t1"), 2)
}

func TestHub_DisconnectWithoutJoinIsSafe(t *testing.T) {
	hub := newTestHub(t)

	hub.Disconnect("never-joined")
	flush(hub)

	rooms, clients := hub.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, clients)
}

func TestHub_JoiningAnotherTeamLeavesTheFirst(t *testing.T) {
	hub := newTestHub(t)
	alice := &mockConn{id: "c1"}
	bob := &mockConn{id: "c2"}

	join(hub, alice, "t1", "u1", "Alice")
	join(hub, bob, "t1", "u2", "Bob")
	join(hub, bob, "t2", "u2", "Bob")
	flush(hub)

	assert.Len(t, alice.eventsOfType(EventUserLeft), 1)
	assert.Len(t, hub.Participants("t1"), 1)
	require.Len(t, hub.Participants("t2"), 1)
	assert.Equal(t, "u2", hub.Participants("t2")[0].UserID)
}

func TestHub_RejoiningSameTeamIsIdempotent(t *testing.T) {
	hub := newTestHub(t)
	alice := &mockConn{id: "c1"}
	bob := &mockConn{id: "c2"}

	join(hub, alice, "t1", "u1", "Alice")
	join(hub, bob, "t1", "u2", "Bob")
	join(hub, bob, "t1", "u2", "Bob")
	flush(hub)

	assert.Len(t, alice.eventsOfType(EventUserJoined), 1)
	assert.Len(t, hub.Participants("t1"), 2)

	_, clients := hub.Stats()
	assert.Equal(t, 2, clients)
}

func TestHub_FailedDeliveryDoesNotAbortFanOut(t *testing.T) {
	hub := newTestHub(t)
	sender := &mockConn{id: "c1"}
	stuck := &mockConn{id: "c2", fail: true}
	healthy := &mockConn{id: "c3"}

	join(hub, sender, "t1", "u1", "Alice")
	join(hub, stuck, "t1", "u2", "Bob")
	join(hub, healthy, "t1", "u3", "Carol")

	ev, err := NewEvent(EventTaskUpdated, RoomKey("t1"), nil)
	require.NoError(t, err)
	hub.Broadcast("t1", ev, sender.ID())
	flush(hub)

	require.Len(t, healthy.eventsOfType(EventTaskUpdated), 1)

	// The stuck peer stays a member until its heartbeat reaps it
	_, clients := hub.Stats()
	assert.Equal(t, 3, clients)
}
