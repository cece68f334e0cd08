package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore caché compartida sobre Redis.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore conecta a Redis a partir de una URL (redis://...) y verifica con PING.
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url inválida: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("no se pudo conectar a redis: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

// Get deserializa el valor si existe.
func (c *RedisStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set guarda el valor serializado con TTL.
func (c *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, b, ttl).Err()
}

// Delete elimina la clave.
func (c *RedisStore) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.prefix+key).Err()
}

// Ping verifica conectividad (health check).
func (c *RedisStore) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close cierra la conexión.
func (c *RedisStore) Close() error {
	return c.rdb.Close()
}
