package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/pit-fundamentals/internal/cache"
)

func TestPutThenGetHits(t *testing.T) {
	ctx := context.Background()
	c, err := cache.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer c.Close()

	key := cache.Key("https://data.sec.gov/api/xbrl/companyfacts/CIK0000320193.json", nil)
	require.NoError(t, c.Put(ctx, key, []byte(`{"cik":320193}`)))

	body, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"cik":320193}`, string(body))
}

func TestGetMiss(t *testing.T) {
	ctx := context.Background()
	c, err := cache.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Get(ctx, cache.Key("https://example.invalid", nil))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeyIsHeaderSensitive(t *testing.T) {
	base := "https://data.sec.gov/submissions/CIK0000320193.json"
	k1 := cache.Key(base, map[string]string{"Accept": "application/json"})
	k2 := cache.Key(base, map[string]string{"Accept": "application/xml"})
	require.NotEqual(t, k1, k2)
}

func TestPutIsIdempotentOnConflict(t *testing.T) {
	ctx := context.Background()
	c, err := cache.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer c.Close()

	key := cache.Key("https://data.sec.gov/x", nil)
	require.NoError(t, c.Put(ctx, key, []byte("first")))
	require.NoError(t, c.Put(ctx, key, []byte("second")))

	body, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first", string(body))
}
