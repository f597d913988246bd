package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhoini/notification-relay/pkg/logger"
)

func newTestStore(t *testing.T) (*RedisEventStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisEventStoreFromClient(client, time.Hour, logger.NewNop()), mr
}

func TestRedisEventStoreMarksAndReportsEvents(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkProcessed(ctx, "evt_1"))

	seen, err = store.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.Seen(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, seen)

	assert.Equal(t, time.Hour, mr.TTL(processedEventKeyPrefix+"evt_1"))
}

func TestRedisEventStoreKeysExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkProcessed(ctx, "evt_1"))
	mr.FastForward(2 * time.Hour)

	seen, err := store.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisEventStoreSurfacesErrors(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.Seen(context.Background(), "evt_1")
	assert.Error(t, err)
	assert.Error(t, store.MarkProcessed(context.Background(), "evt_1"))
}

func TestNewRedisEventStoreProbesConnection(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisEventStore(context.Background(), mr.Addr(), "", 0, 0, logger.NewNop())
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, defaultEventTTL, store.ttl)
}

func TestNewRedisEventStoreGivesUpWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisEventStore(context.Background(), addr, "", 0, time.Hour, logger.NewNop())
	assert.Error(t, err)
}

func TestNopEventStore(t *testing.T) {
	var store EventStore = NopEventStore{}
	require.NoError(t, store.MarkProcessed(context.Background(), "evt_1"))
	seen, err := store.Seen(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}
