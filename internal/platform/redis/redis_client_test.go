package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	t.Run("disabled when address is empty", func(t *testing.T) {
		rdb, err := NewRedisClient(context.Background(), Options{})

		assert.NoError(t, err)
		assert.Nil(t, rdb)
	})

	t.Run("connects to a live server", func(t *testing.T) {
		mr := miniredis.RunT(t)

		rdb, err := NewRedisClient(context.Background(), Options{Addr: mr.Addr()})

		require.NoError(t, err)
		require.NotNil(t, rdb)
		t.Cleanup(func() { _ = rdb.Close() })
		assert.NoError(t, rdb.Ping(context.Background()).Err())
	})

	t.Run("fails when the server is unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		rdb, err := NewRedisClient(context.Background(), Options{Addr: addr})

		assert.Error(t, err)
		assert.Nil(t, rdb)
	})
}
