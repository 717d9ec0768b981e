package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/supplychain-analytics/internal/config"
)

const (
	redisDialTimeout = 5 * time.Second

	// Reports are cheap to recalculate, so the default TTL is short and
	// acts mostly as request coalescing for the API.
	defaultReportTTL = time.Minute
)

// dialReportRedis connects and pings the cache backend. A full REDIS_URL
// wins over discrete host/port settings when both are configured.
func dialReportRedis(cfg config.CacheConfig) (*redis.Client, error) {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     net.JoinHostPort(hostOrDefault(cfg.RedisHost), portOrDefault(cfg.RedisPort)),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func reportTTL(cfg config.CacheConfig) time.Duration {
	if cfg.ReportTTLSeconds > 0 {
		return time.Duration(cfg.ReportTTLSeconds) * time.Second
	}
	return defaultReportTTL
}

func hostOrDefault(host string) string {
	if host == "" {
		return "127.0.0.1"
	}
	return host
}

func portOrDefault(port string) string {
	if port == "" {
		return "6379"
	}
	return port
}

// purgeByPrefix walks the keyspace with SCAN and deletes every key under
// the prefix, in batches, so invalidation never blocks the server the way
// a KEYS sweep would.
func purgeByPrefix(ctx context.Context, client *redis.Client, prefix string, batchSize int64) error {
	var cursor uint64
	pattern := prefix + "*"
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, batchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}
