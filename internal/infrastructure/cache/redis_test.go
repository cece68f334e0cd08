package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere un Redis real: REDIS_TEST_URL=redis://localhost:6379/15
func TestRedisStore_Integracion(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL no definido")
	}
	ctx := context.Background()
	c, err := NewRedisStore(ctx, url, "punchlist-test:")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "perm:9", map[string]bool{"view_tasks": true}, time.Minute))
	var got map[string]bool
	ok, err := c.Get(ctx, "perm:9", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got["view_tasks"])

	require.NoError(t, c.Delete(ctx, "perm:9"))
	ok, err = c.Get(ctx, "perm:9", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisStore_URLInvalida(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "no-es-una-url", "")
	assert.Error(t, err)
}
