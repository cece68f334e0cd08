package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore()

	require.NoError(t, c.Set(ctx, "perm:1", map[string]bool{"inventory_manage": true}, time.Minute))

	var got map[string]bool
	ok, err := c.Get(ctx, "perm:1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got["inventory_manage"])

	got["inventory_manage"] = false
	var again map[string]bool
	_, _ = c.Get(ctx, "perm:1", &again)
	assert.True(t, again["inventory_manage"], "Get devuelve una copia")

	require.NoError(t, c.Delete(ctx, "perm:1"))
	ok, err = c.Get(ctx, "perm:1", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Expira(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 1, 30*time.Second))
	var v int
	ok, _ := c.Get(ctx, "k", &v)
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	ok, _ = c.Get(ctx, "k", &v)
	assert.False(t, ok)
}

func TestMemoryStore_InvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore()
	_ = c.Set(ctx, "perm:1", 1, time.Minute)
	_ = c.Set(ctx, "perm:2", 2, time.Minute)
	_ = c.Set(ctx, "tasks:summary", 3, time.Minute)

	c.InvalidatePrefix("perm:")

	var v int
	ok, _ := c.Get(ctx, "perm:1", &v)
	assert.False(t, ok)
	ok, _ = c.Get(ctx, "tasks:summary", &v)
	assert.True(t, ok)
}

func TestMemoryStore_Concurrente(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Set(ctx, "k", i, time.Minute)
			var v int
			_, _ = c.Get(ctx, "k", &v)
		}(i)
	}
	wg.Wait()
}
