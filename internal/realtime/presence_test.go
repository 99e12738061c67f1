package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddAndRemove(t *testing.T) {
	r := NewRegistry()

	joined, count := r.Add("room:t1", Participant{UserID: "u1", UserName: "Alice"})
	assert.True(t, joined)
	assert.Equal(t, 1, count)

	joined, count = r.Add("room:t1", Participant{UserID: "u2", UserName: "Bob"})
	assert.True(t, joined)
	assert.Equal(t, 2, count)

	assert.True(t, r.Remove("room:t1", "u1"))
	assert.False(t, r.IsEmpty("room:t1"))

	assert.True(t, r.Remove("room:t1", "u2"))
	assert.True(t, r.IsEmpty("room:t1"))
	assert.Equal(t, 0, r.RoomCount())
}

func TestRegistry_DuplicateTabsCollapse(t *testing.T) {
	r := NewRegistry()

	joined, count := r.Add("room:t1", Participant{UserID: "u1", UserName: "Alice"})
	require.True(t, joined)
	require.Equal(t, 1, count)

	// Second tab of the same user: no new presence entry
	joined, count = r.Add("room:t1", Participant{UserID: "u1", UserName: "Alice"})
	assert.False(t, joined)
	assert.Equal(t, 1, count)

	// First tab closes: user is still present
	assert.False(t, r.Remove("room:t1", "u1"))
	assert.False(t, r.IsEmpty("room:t1"))

	// Last tab closes: now the user is gone
	assert.True(t, r.Remove("room:t1", "u1"))
	assert.True(t, r.IsEmpty("room:t1"))
}

func TestRegistry_RemoveAbsentIsNoOp(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.Remove("room:t1", "ghost"))

	r.Add("room:t1", Participant{UserID: "u1"})
	assert.False(t, r.Remove("room:t1", "ghost"))
	assert.False(t, r.Remove("room:other", "u1"))
	assert.False(t, r.IsEmpty("room:t1"))
}

func TestRegistry_ListOrderedByJoinTime(t *testing.T) {
	r := NewRegistry()
	base := time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)

	r.Add("room:t1", Participant{UserID: "u3", UserName: "Carol", JoinedAt: base.Add(2 * time.Second)})
	r.Add("room:t1", Participant{UserID: "u1", UserName: "Alice", JoinedAt: base})
	r.Add("room:t1", Participant{UserID: "u2", UserName: "Bob", JoinedAt: base.Add(time.Second)})

	participants := r.List("room:t1")
	require.Len(t, participants, 3)
	assert.Equal(t, "u1", participants[0].UserID)
	assert.Equal(t, "u2", participants[1].UserID)
	assert.Equal(t, "u3", participants[2].UserID)
}

func TestRegistry_ListTieBreaksByUserID(t *testing.T) {
	r := NewRegistry()
	at := time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)

	r.Add("room:t1", Participant{UserID: "u2", JoinedAt: at})
	r.Add("room:t1", Participant{UserID: "u1", JoinedAt: at})

	participants := r.List("room:t1")
	require.Len(t, participants, 2)
	assert.Equal(t, "u1", participants[0].UserID)
	assert.Equal(t, "u2", participants[1].UserID)
}

func TestRegistry_RoomsAreIndependent(t *testing.T) {
	r := NewRegistry()

	r.Add("room:t1", Participant{UserID: "u1"})
	r.Add("room:t2", Participant{UserID: "u1"})

	assert.Equal(t, 2, r.RoomCount())
	assert.True(t, r.Remove("room:t1", "u1"))
	assert.True(t, r.IsEmpty("room:t1"))
	assert.False(t, r.IsEmpty("room:t2"))
}
