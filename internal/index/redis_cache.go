package index

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisCache stores observations as a hash: field = timestamp, value = text.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects and verifies the server with a ping.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisCacheFromClient(client, cfg.Prefix), nil
}

func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(identity string) string {
	return c.prefix + identity
}

func (c *RedisCache) Load(ctx context.Context, identity string) ([]Observation, bool, error) {
	m, err := c.client.HGetAll(ctx, c.key(identity)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis HGETALL %s: %w", c.key(identity), err)
	}
	if len(m) == 0 {
		return nil, false, nil
	}
	obs, err := ParseTimestamps(m)
	if err != nil {
		return nil, false, err
	}
	return obs, true, nil
}

func (c *RedisCache) Save(ctx context.Context, identity string, obs []Observation) error {
	if len(obs) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(obs))
	for _, o := range obs {
		fields[FormatTimestamp(o.Timestamp)] = o.Text
	}

	key := c.key(identity)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
