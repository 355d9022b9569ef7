package reach

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace-ads/internal/config/configs"
)

const bucketLayout = "2006010215"

// RedisEstimator counts distinct viewers with one HyperLogLog per campaign
// and hour. Estimates union the buckets covering the window, so the count
// stays approximate (about 0.8% standard error) but memory is bounded.
type RedisEstimator struct {
	client *redis.Client
	window time.Duration
}

func NewRedisClient(ctx context.Context, cfg configs.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisEstimator(client *redis.Client, window time.Duration) *RedisEstimator {
	return &RedisEstimator{client: client, window: window}
}

func (r *RedisEstimator) Observe(ctx context.Context, campaignID, viewerID string, at time.Time) error {
	key := bucketKey(campaignID, at)
	pipe := r.client.TxPipeline()
	pipe.PFAdd(ctx, key, viewerID)
	// Keep a bucket for the whole window it can fall into.
	pipe.Expire(ctx, key, r.window+time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pfadd: %w", err)
	}
	return nil
}

func (r *RedisEstimator) Estimate(ctx context.Context, campaignID string, now time.Time) (int64, error) {
	n, err := r.client.PFCount(ctx, bucketKeys(campaignID, now, r.window)...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis pfcount: %w", err)
	}
	return n, nil
}

func bucketKey(campaignID string, at time.Time) string {
	return fmt.Sprintf("reach:%s:%s", campaignID, at.UTC().Format(bucketLayout))
}

// bucketKeys lists the hourly keys overlapping (now-window, now].
func bucketKeys(campaignID string, now time.Time, window time.Duration) []string {
	end := now.UTC().Truncate(time.Hour)
	start := now.UTC().Add(-window).Truncate(time.Hour)
	keys := make([]string, 0, int(window/time.Hour)+1)
	for t := end; !t.Before(start); t = t.Add(-time.Hour) {
		keys = append(keys, bucketKey(campaignID, t))
	}
	return keys
}
