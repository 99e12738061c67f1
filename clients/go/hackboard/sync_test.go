package hackboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saransh000/hackathonpractice/internal/realtime"
)

const (
	waitFor = 3 * time.Second
	tick    = 20 * time.Millisecond
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hub := realtime.NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", realtime.Handler(hub, realtime.NewRouter(hub, zerolog.Nop()), zerolog.Nop()))

	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		ts.Close()
		cancel()
		hub.Wait()
	})
	return ts
}

func newTestSync(t *testing.T, ts *httptest.Server, userID, userName string) *Sync {
	t.Helper()

	c := NewClient(ts.URL)
	c.UserID = userID
	c.UserName = userName

	s := NewSync(c)
	require.NoError(t, s.Connect())
	t.Cleanup(func() { s.Close() })
	return s
}

// recorder collects callback invocations for assertions.
type recorder struct {
	mu    sync.Mutex
	tasks []string
	users []string
}

func (r *recorder) taskActions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.tasks))
	copy(out, r.tasks)
	return out
}

func (r *recorder) userIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.users))
	copy(out, r.users)
	return out
}

func TestSync_TaskUpdateReachesPeersOnly(t *testing.T) {
	ts := newTestServer(t)

	alice := newTestSync(t, ts, "u1", "Alice")
	bob := newTestSync(t, ts, "u2", "Bob")

	require.NoError(t, alice.JoinTeam("t1"))
	require.NoError(t, bob.JoinTeam("t1"))

	aliceRec := &recorder{}
	bobRec := &recorder{}
	alice.OnTaskUpdated(func(task json.RawMessage, action string) {
		aliceRec.mu.Lock()
		aliceRec.tasks = append(aliceRec.tasks, action)
		aliceRec.mu.Unlock()
	})
	bob.OnTaskUpdated(func(task json.RawMessage, action string) {
		bobRec.mu.Lock()
		bobRec.tasks = append(bobRec.tasks, action)
		bobRec.mu.Unlock()
	})

	require.NoError(t, alice.EmitTaskUpdate(map[string]string{"id": "task-1"}, "create"))

	assert.Eventually(t, func() bool {
		return len(bobRec.taskActions()) == 1
	}, waitFor, tick, "peer should receive the task signal")
	assert.Equal(t, []string{"create"}, bobRec.taskActions())

	// The sender never hears its own event back
	assert.Empty(t, aliceRec.taskActions())
}

func TestSync_ActiveUsersRosterOnJoin(t *testing.T) {
	ts := newTestServer(t)

	alice := newTestSync(t, ts, "u1", "Alice")
	require.NoError(t, alice.JoinTeam("t1"))

	bob := newTestSync(t, ts, "u2", "Bob")
	rec := &recorder{}
	bob.OnActiveUsers(func(userIDs []string) {
		rec.mu.Lock()
		rec.users = append(rec.users, userIDs...)
		rec.mu.Unlock()
	})
	require.NoError(t, bob.JoinTeam("t1"))

	assert.Eventually(t, func() bool {
		return len(rec.userIDs()) == 2
	}, waitFor, tick, "joiner should receive the full roster")
	assert.ElementsMatch(t, []string{"u1", "u2"}, rec.userIDs())
}

func TestSync_PresenceNotifications(t *testing.T) {
	ts := newTestServer(t)

	alice := newTestSync(t, ts, "u1", "Alice")
	require.NoError(t, alice.JoinTeam("t1"))

	var joined, left []string
	var mu sync.Mutex
	alice.OnUserJoined(func(userID, userName string) {
		mu.Lock()
		joined = append(joined, userID)
		mu.Unlock()
	})
	alice.OnUserLeft(func(userID, userName string) {
		mu.Lock()
		left = append(left, userID)
		mu.Unlock()
	})

	bob := newTestSync(t, ts, "u2", "Bob")
	require.NoError(t, bob.JoinTeam("t1"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(joined) == 1
	}, waitFor, tick)

	require.NoError(t, bob.LeaveTeam())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(left) == 1
	}, waitFor, tick)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"u2"}, joined)
	assert.Equal(t, []string{"u2"}, left)
}

func TestSync_HandlerRegistrationReplaces(t *testing.T) {
	ts := newTestServer(t)

	alice := newTestSync(t, ts, "u1", "Alice")
	bob := newTestSync(t, ts, "u2", "Bob")
	require.NoError(t, alice.JoinTeam("t1"))
	require.NoError(t, bob.JoinTeam("t1"))

	var mu sync.Mutex
	var firstCalls, secondCalls int
	bob.OnTyping(func(userName, taskID string) {
		mu.Lock()
		firstCalls++
		mu.Unlock()
	})
	// Re-registering replaces the first handler instead of stacking
	bob.OnTyping(func(userName, taskID string) {
		mu.Lock()
		secondCalls++
		mu.Unlock()
	})

	require.NoError(t, alice.EmitTyping("task-1"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return secondCalls == 1
	}, waitFor, tick)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, firstCalls)
}

func TestSync_ReconnectRejoinsLastTeam(t *testing.T) {
	ts := newTestServer(t)

	alice := newTestSync(t, ts, "u1", "Alice")
	bob := newTestSync(t, ts, "u2", "Bob")
	require.NoError(t, alice.JoinTeam("t1"))
	require.NoError(t, bob.JoinTeam("t1"))

	rec := &recorder{}
	bob.OnTaskUpdated(func(task json.RawMessage, action string) {
		rec.mu.Lock()
		rec.tasks = append(rec.tasks, action)
		rec.mu.Unlock()
	})

	// Sever Bob's transport out from under him
	bob.mu.Lock()
	ws := bob.ws
	bob.mu.Unlock()
	require.NotNil(t, ws)
	ws.Close()

	// The adapter dials back and silently re-enters the room, so a
	// later emit from Alice still reaches Bob.
	assert.Eventually(t, func() bool {
		if bob.State() != StateJoined {
			return false
		}
		alice.EmitTaskUpdate(map[string]string{"id": "task-1"}, "update")
		return len(rec.taskActions()) > 0
	}, waitFor, tick, "peer should be rejoined after reconnect")
}

func TestSync_EmitWithoutJoinFails(t *testing.T) {
	ts := newTestServer(t)

	alice := newTestSync(t, ts, "u1", "Alice")

	assert.ErrorIs(t, alice.EmitTaskUpdate(map[string]string{"id": "x"}, "create"), ErrNotConnected)
	assert.ErrorIs(t, alice.EmitTyping("task-1"), ErrNotConnected)
	assert.ErrorIs(t, alice.EmitColumnUpdate([]string{}), ErrNotConnected)
}
