package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pulseboard/internal/app/service/billing"
	"github.com/fatflowers/pulseboard/pkg/config"
	"github.com/fatflowers/pulseboard/pkg/logctx"
)

const keyBillingSnapshot = "billing:snapshot:%s"

// Cache is a read-through redis layer in front of a SnapshotStore. Redis
// failures are logged and fall through to the store. A nil client disables
// caching.
type Cache struct {
	next   billing.SnapshotStore
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

var _ billing.SnapshotStore = (*Cache)(nil)

func NewCache(next billing.SnapshotStore, client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *Cache {
	return &Cache{next: next, client: client, ttl: ttl, log: log}
}

func cacheKey(orgID string) string {
	return fmt.Sprintf(keyBillingSnapshot, strings.TrimSpace(orgID))
}

// Save writes through to the store and refreshes the cached copy.
func (c *Cache) Save(ctx context.Context, orgID string, snap *billing.Snapshot) error {
	if err := c.next.Save(ctx, orgID, snap); err != nil {
		if c.client != nil {
			c.client.Del(ctx, cacheKey(orgID))
		}
		return err
	}
	c.put(ctx, orgID, snap)
	return nil
}

func (c *Cache) Load(ctx context.Context, orgID string) (*billing.Snapshot, error) {
	if c.client == nil {
		return c.next.Load(ctx, orgID)
	}
	log := logctx.FromCtx(ctx, c.log)

	raw, err := c.client.Get(ctx, cacheKey(orgID)).Bytes()
	switch {
	case err == nil:
		var snap billing.Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return &snap, nil
		}
		log.Warnw("discarding undecodable cached snapshot", "org_id", orgID)
	case errors.Is(err, redis.Nil):
	default:
		log.Warnw("snapshot cache read failed", "org_id", orgID, "err", err)
	}

	snap, err := c.next.Load(ctx, orgID)
	if err != nil || snap == nil {
		return snap, err
	}
	c.put(ctx, orgID, snap)
	return snap, nil
}

func (c *Cache) put(ctx context.Context, orgID string, snap *billing.Snapshot) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		logctx.FromCtx(ctx, c.log).Warnw("encode snapshot for cache failed", "org_id", orgID, "err", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(orgID), raw, c.ttl).Err(); err != nil {
		logctx.FromCtx(ctx, c.log).Warnw("snapshot cache write failed", "org_id", orgID, "err", err)
	}
}

// NewRedis returns a client for redis.addr, or nil when no address is set.
func NewRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) *redis.Client {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		log.Infow("redis not configured; billing snapshots are read from the database")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Infow("closing redis client")
			return client.Close()
		},
	})
	return client
}

func newSnapshotStore(db *Store, client *redis.Client, cfg *config.Config, log *zap.SugaredLogger) billing.SnapshotStore {
	return NewCache(db, client, cfg.SnapshotTTL(), log)
}

var Module = fx.Options(
	fx.Provide(NewStore),
	fx.Provide(NewRedis),
	fx.Provide(newSnapshotStore),
)
