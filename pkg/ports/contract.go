package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/nest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSnapshot := func() *domain.Snapshot {
		return &domain.Snapshot{
			Status: domain.PhaseLeaf,
			Event:  "submit",
			Stack: []domain.StateDump{
				{Key: "MAIN", Data: map[string]any{"user": "guest", "count": 42}},
				{Key: "FORM", Data: map[string]any{}},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := newSnapshot()
		require.NoError(t, store.Save(ctx, sessionID, snap), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.Status, loaded.Status)
		assert.Equal(t, snap.Event, loaded.Event)
		assert.Equal(t, snap.Path(), loaded.Path())
		assert.Equal(t, "guest", loaded.Stack[0].Data["user"])
		// JSON backends turn ints into float64, only presence is part of the contract.
		assert.NotNil(t, loaded.Stack[0].Data["count"])
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Stack[0].Data["user"] = "mutated"
		loaded.Event = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "guest", again.Stack[0].Data["user"])
		assert.Equal(t, "submit", again.Event)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, newSnapshot()))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Delete of a missing session is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, newSnapshot()))
		require.NoError(t, store.Save(ctx, id2, newSnapshot()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
