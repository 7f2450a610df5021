package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/pulseboard/internal/app/service/billing"
)

type countingStore struct {
	billing.SnapshotStore
	loads   int
	saveErr error
}

func (c *countingStore) Load(ctx context.Context, orgID string) (*billing.Snapshot, error) {
	c.loads++
	return c.SnapshotStore.Load(ctx, orgID)
}

func (c *countingStore) Save(ctx context.Context, orgID string, snap *billing.Snapshot) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	return c.SnapshotStore.Save(ctx, orgID, snap)
}

func newCache(t *testing.T) (*Cache, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	next := &countingStore{SnapshotStore: newStore(t)}
	return NewCache(next, client, time.Minute, zap.NewNop().Sugar()), next, mr
}

func TestCache_ReadThrough(t *testing.T) {
	c, next, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, next.SnapshotStore.Save(ctx, "org-1", fixture()))

	first, err := c.Load(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, 1, next.loads)
	require.True(t, mr.Exists(cacheKey("org-1")))
	require.Equal(t, time.Minute, mr.TTL(cacheKey("org-1")))

	second, err := c.Load(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, 1, next.loads)
	require.Equal(t, first.Counts(), second.Counts())
	require.True(t, first.Subscriptions[0].DiscountedAmount.Equal(second.Subscriptions[0].DiscountedAmount))
}

func TestCache_MissingSnapshotNotCached(t *testing.T) {
	c, next, mr := newCache(t)
	snap, err := c.Load(context.Background(), "org-none")
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Equal(t, 1, next.loads)
	require.False(t, mr.Exists(cacheKey("org-none")))
}

func TestCache_SaveRefreshes(t *testing.T) {
	c, next, _ := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, "org-1", fixture()))

	got, err := c.Load(ctx, "org-1")
	require.NoError(t, err)
	require.Zero(t, next.loads)
	require.Equal(t, "sub_1", got.Subscriptions[0].ID)
}

func TestCache_SaveFailureEvicts(t *testing.T) {
	c, next, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, "org-1", fixture()))

	next.saveErr = errors.New("db down")
	require.Error(t, c.Save(ctx, "org-1", fixture()))
	require.False(t, mr.Exists(cacheKey("org-1")))
}

func TestCache_RedisDownFallsThrough(t *testing.T) {
	c, next, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, next.SnapshotStore.Save(ctx, "org-1", fixture()))
	mr.Close()

	got, err := c.Load(ctx, "org-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 1, next.loads)
}

func TestCache_CorruptEntryIgnored(t *testing.T) {
	c, next, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, next.SnapshotStore.Save(ctx, "org-1", fixture()))
	require.NoError(t, mr.Set(cacheKey("org-1"), "{not json"))

	got, err := c.Load(ctx, "org-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 1, next.loads)
}

func TestCache_NilClientPassesThrough(t *testing.T) {
	next := &countingStore{SnapshotStore: newStore(t)}
	c := NewCache(next, nil, time.Minute, zap.NewNop().Sugar())
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, "org-1", fixture()))
	got, err := c.Load(ctx, "org-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 1, next.loads)
}
