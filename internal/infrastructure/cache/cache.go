// Package cache caché clave/valor con TTL: en memoria (un proceso) o Redis (compartida entre
// workers). Los valores se guardan serializados en JSON, así que Get siempre devuelve una copia.
package cache

import (
	"context"
	"time"
)

// Store contrato común de MemoryStore y RedisStore.
type Store interface {
	// Get deserializa en dst. false si la clave no existe o expiró.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
