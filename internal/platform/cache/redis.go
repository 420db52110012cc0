package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"signet/pkg/platform/sentinel"
)

var (
	scanDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signet_cache_scan_duration_ms",
		Help:    "Latency of cache prefix scans in milliseconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
	})
	keysDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signet_cache_keys_deleted_total",
		Help: "Total cache keys removed through bulk deletion",
	})
)

// scanBatch bounds both SCAN page size and DEL pipeline size.
const scanBatch = 512

// Redis is the production Cache backed by a shared Redis instance. SCAN is
// used for enumeration so the dashboard never blocks Redis the way KEYS would.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client; its lifecycle is managed by the caller.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("cache get %q: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("cache get %q: %w", key, err)
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	defer func() {
		scanDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	var keys []string
	iter := r.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("cache scan %q: %w", prefix, err)
	}
	return keys, nil
}

func (r *Redis) DeleteMany(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	var deleted int64
	pipe := r.client.Pipeline()
	cmds := make([]*redis.IntCmd, 0, len(keys)/scanBatch+1)
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		cmds = append(cmds, pipe.Del(ctx, keys[start:end]...))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("cache bulk delete: %w", err)
	}
	for _, cmd := range cmds {
		deleted += cmd.Val()
	}
	keysDeleted.Add(float64(deleted))
	return deleted, nil
}

func (r *Redis) CountPrefix(ctx context.Context, prefix string) (int, error) {
	start := time.Now()
	defer func() {
		scanDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	count := 0
	iter := r.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("cache scan %q: %w", prefix, err)
	}
	return count, nil
}
