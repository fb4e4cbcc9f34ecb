package activity

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePrune_RemovesOnlyAgedEntries(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	old := SystemEntry(ActionResidentUpdated, "resident", "r1", "aged out")
	old.CreatedAt = now.AddDate(0, 0, -120)
	recent := SystemEntry(ActionResidentUpdated, "resident", "r2", "kept")
	recent.CreatedAt = now.AddDate(0, 0, -10)
	require.NoError(t, store.Append(ctx, old))
	require.NoError(t, store.Append(ctx, recent))

	removed, err := store.Prune(ctx, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "r2", entries[0].ModelID)
}

func TestWorker_PrunesOnStartAndStopsOnCancel(t *testing.T) {
	store := NewInMemoryStore()
	entry := SystemEntry(ActionResidentDeleted, "resident", "r1", "")
	entry.CreatedAt = time.Now().AddDate(0, 0, -200)
	require.NoError(t, store.Append(context.Background(), entry))

	w := NewWorker(store, 90*24*time.Hour, time.Hour, slog.Default(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The initial prune runs before the first tick.
	assert.Eventually(t, func() bool {
		entries, err := store.List(context.Background())
		return err == nil && len(entries) == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
