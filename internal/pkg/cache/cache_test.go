package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return NewStore(c), mr
}

func TestStoreJSONRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	type report struct {
		Phase string `json:"phase"`
		Days  int    `json:"days"`
	}

	require.NoError(t, store.SetJSON(ctx, "status:m1", report{Phase: "active", Days: 12}, time.Minute))

	var got report
	found, err := store.GetJSON(ctx, "status:m1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, report{Phase: "active", Days: 12}, got)

	mr.FastForward(2 * time.Minute)
	found, err = store.GetJSON(ctx, "status:m1", &got)
	require.NoError(t, err)
	assert.False(t, found, "entry expired")
}

func TestStoreDeletePattern(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetJSON(ctx, "status:a", 1, 0))
	require.NoError(t, store.SetJSON(ctx, "status:b", 2, 0))
	require.NoError(t, store.SetJSON(ctx, "other", 3, 0))

	require.NoError(t, store.DeletePattern(ctx, "status:*"))

	assert.False(t, mr.Exists("status:a"))
	assert.False(t, mr.Exists("status:b"))
	assert.True(t, mr.Exists("other"))
}

func TestAcquireLockIsExclusive(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	lock, err := store.AcquireLock(ctx, "backfill", time.Minute)
	require.NoError(t, err)

	_, err = store.AcquireLock(ctx, "backfill", time.Minute)
	require.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lock.Release(ctx))
	assert.False(t, mr.Exists("lock:backfill"))

	again, err := store.AcquireLock(ctx, "backfill", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestReleaseDoesNotStealForeignLock(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	stale, err := store.AcquireLock(ctx, "expire", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	fresh, err := store.AcquireLock(ctx, "expire", time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale.Release(ctx))
	assert.True(t, mr.Exists("lock:expire"), "stale holder must not release the new lock")

	require.NoError(t, fresh.Release(ctx))
	assert.False(t, mr.Exists("lock:expire"))
}
