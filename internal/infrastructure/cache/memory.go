package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore caché en memoria con TTL. Solo coherente dentro del mismo proceso.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewMemoryStore crea la caché.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]entry{}, now: time.Now}
}

// Get devuelve el valor si existe y no expiró.
func (c *MemoryStore) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(e.value, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set guarda el valor serializado con el TTL dado.
func (c *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{value: b, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete elimina la clave.
func (c *MemoryStore) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// InvalidatePrefix elimina todas las claves con el prefijo.
func (c *MemoryStore) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}
