package kv

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cubicool/cubicle/internal/world"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()

	store, err := OpenSnapshotStore(
		filepath.Join(t.TempDir(), "cubicle.db"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func sampleSnapshot() world.Snapshot {
	return world.Snapshot{
		Users: []world.User{{
			ID:       "user-1",
			Name:     "Dana",
			Username: "dana",
			Email:    "dana@test.com",
		}},
		Threads: []world.Thread{},
		Coworkers: []world.Coworker{{
			ID:    "coworker-1",
			Name:  "Alice",
			Email: "alice@test.com",
		}},
		CurrentTime: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC),
	}
}

// TestSaveLoadRoundTrip verifies a saved snapshot loads back identical.
func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	snap := sampleSnapshot()
	require.NoError(t, store.Save(ctx, "manual", snap))

	got, err := store.Load(ctx, "manual")
	require.NoError(t, err)
	require.Equal(t, snap, got)
}

// TestSaveReplacesSlot verifies saving to the same slot overwrites it.
func TestSaveReplacesSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	first := sampleSnapshot()
	require.NoError(t, store.Save(ctx, AutosaveSlot, first))

	second := sampleSnapshot()
	second.Muted = true
	require.NoError(t, store.Save(ctx, AutosaveSlot, second))

	got, err := store.Load(ctx, AutosaveSlot)
	require.NoError(t, err)
	require.True(t, got.Muted)

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, AutosaveSlot, infos[0].Name)
}

// TestLoadMissingSlot verifies the not-found sentinel.
func TestLoadMissingSlot(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSnapshotNotFound)
}

// TestDelete verifies slots can be removed and double deletion errors.
func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, "manual", sampleSnapshot()))
	require.NoError(t, store.Delete(ctx, "manual"))
	require.ErrorIs(t, store.Delete(ctx, "manual"), ErrSnapshotNotFound)

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, infos)
}
