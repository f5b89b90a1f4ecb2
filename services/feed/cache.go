package feed

import (
	"context"
	"encoding/json"
	"time"

	"helpr/models"

	"github.com/go-redis/redis/v8"
)

// SnapshotCache persists the open-jobs snapshot so fresh processes can serve
// a feed before their watcher's first refresh lands.
type SnapshotCache interface {
	Save(ctx context.Context, items []models.ServiceRequest) error
	Load(ctx context.Context) ([]models.ServiceRequest, error)
}

type RedisSnapshotCache struct {
	client *redis.Client
}

func NewRedisSnapshotCache(client *redis.Client) SnapshotCache {
	return &RedisSnapshotCache{client: client}
}

const snapshotKey = "feed:open_jobs"

var snapshotTTL = 2 * time.Hour

func (c *RedisSnapshotCache) Save(ctx context.Context, items []models.ServiceRequest) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey, data, snapshotTTL).Err()
}

// Load returns the cached snapshot, or nil when none is cached.
func (c *RedisSnapshotCache) Load(ctx context.Context) ([]models.ServiceRequest, error) {
	val, err := c.client.Get(ctx, snapshotKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []models.ServiceRequest
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, err
	}
	return items, nil
}
