package cache

import (
	"context"
	"testing"

	"devhub/internal/observability"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	opts, err := Options("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = Options("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = Options("  ")
	assert.Error(t, err)
	_, err = Options("redis://cache:6379/notadb")
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	addr := mr.Addr()
	rdb, err := Connect(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	before := testutil.ToFloat64(observability.RedisErrors.WithLabelValues("get"))
	_, err = rdb.Get(ctx, "missing").Result()
	require.Error(t, err)
	assert.Equal(t, before, testutil.ToFloat64(observability.RedisErrors.WithLabelValues("get")))

	mr.Close()
	_ = rdb.Get(ctx, "missing").Err()
	assert.Greater(t, testutil.ToFloat64(observability.RedisErrors.WithLabelValues("get")), before)

	_, err = Connect(ctx, addr)
	assert.Error(t, err)
}
