package identity

import (
	"context"
	"time"
)

// Cache caché clave/valor con TTL (memoria o Redis).
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
