package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/sms-sim/internal/model/chat"
)

func TestMemoryStoreEvictsIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(10 * time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, model.Session{ID: "old", LastActiveAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Append(ctx, model.Session{ID: "fresh", LastActiveAt: now}))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 1, store.EvictIdle())
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryStoreAppendAfterExpiryStartsOver(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, model.Session{ID: "s", LastActiveAt: now.Add(-time.Hour)},
		model.Message{Content: "stale"}))
	require.NoError(t, store.Append(ctx, model.Session{ID: "s", LastActiveAt: now},
		model.Message{Content: "new"}))

	transcript, err := store.Get(ctx, "s")
	require.NoError(t, err)
	require.Len(t, transcript.Messages, 1)
	assert.Equal(t, "new", transcript.Messages[0].Content)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, model.Session{ID: "s"}, model.Message{Content: "a"}))

	transcript, err := store.Get(ctx, "s")
	require.NoError(t, err)
	transcript.Messages[0].Content = "mutated"

	again, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Messages[0].Content)
}

func TestMemoryStoreJanitorStopsWithContext(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- store.RunJanitor(ctx, 5*time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
