package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"), "activity")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		err := store.Append(Entry{
			ActorID:   1,
			Action:    "created",
			Entity:    "task",
			EntityID:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, int64(5), entries[0].EntityID)
	assert.Equal(t, int64(4), entries[1].EntityID)
	assert.Equal(t, int64(3), entries[2].EntityID)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 5, size)
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Append(Entry{ActorID: 1, Action: "registered", Entity: "user", EntityID: 1}))

	entries, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestCleanup(t *testing.T) {
	store := openTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()

	require.NoError(t, store.Append(Entry{ActorID: 1, Action: "created", Entity: "task", EntityID: 1, Timestamp: old}))
	require.NoError(t, store.Append(Entry{ActorID: 1, Action: "created", Entity: "task", EntityID: 2, Timestamp: fresh}))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	entries, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].EntityID)
}
