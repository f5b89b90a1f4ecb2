package intelligence

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"helpr/models"

	"github.com/go-redis/redis/v8"
)

const estimatePrefix = "ai:estimate:"

// EstimateCache remembers recent quotes so repeat lookups skip the model.
type EstimateCache interface {
	Get(ctx context.Context, req models.PriceEstimateRequest) (*models.PriceEstimate, error)
	Set(ctx context.Context, req models.PriceEstimateRequest, est *models.PriceEstimate) error
}

type RedisEstimateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisEstimateCache(client *redis.Client, ttl time.Duration) *RedisEstimateCache {
	return &RedisEstimateCache{client: client, ttl: ttl}
}

func estimateKey(req models.PriceEstimateRequest) string {
	raw := strings.Join([]string{req.ServiceType, req.Description, req.StartLocation, req.EndLocation}, "|")
	sum := sha1.Sum([]byte(strings.ToLower(raw)))
	return estimatePrefix + hex.EncodeToString(sum[:])
}

func (s *RedisEstimateCache) Get(ctx context.Context, req models.PriceEstimateRequest) (*models.PriceEstimate, error) {
	data, err := s.client.Get(ctx, estimateKey(req)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var est models.PriceEstimate
	if err := json.Unmarshal([]byte(data), &est); err != nil {
		return nil, err
	}
	return &est, nil
}

func (s *RedisEstimateCache) Set(ctx context.Context, req models.PriceEstimateRequest, est *models.PriceEstimate) error {
	b, err := json.Marshal(est)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, estimateKey(req), b, s.ttl).Err()
}
