package usage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	q, err := NewRedisQueue(client)
	require.NoError(t, err)
	return q, mr
}

func TestRedisQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("records round-trip", func(t *testing.T) {
		q, _ := newTestRedisQueue(t)
		rec := testRecord("req-redis-1")
		require.NoError(t, q.Enqueue(ctx, rec))

		length, err := q.Length(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, length)

		items, err := q.DequeueWithTimeout(ctx, 10, 100*time.Millisecond)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, rec.ID, items[0].ID)
		assert.Equal(t, "req-redis-1", items[0].RequestID)
		assert.Equal(t, "anthropic", items[0].Provider)
		assert.Equal(t, int64(1024), items[0].FileBytes)
	})

	t.Run("batch drains in order", func(t *testing.T) {
		q, _ := newTestRedisQueue(t)
		require.NoError(t, q.Enqueue(ctx, testRecord("first")))
		require.NoError(t, q.Enqueue(ctx, testRecord("second")))
		require.NoError(t, q.Enqueue(ctx, testRecord("third")))

		items, err := q.DequeueWithTimeout(ctx, 10, 100*time.Millisecond)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "first", items[0].RequestID)
		assert.Equal(t, "third", items[2].RequestID)
	})

	t.Run("malformed entries are skipped", func(t *testing.T) {
		q, mr := newTestRedisQueue(t)
		mr.Lpush(redisQueueKey, "not json at all")
		require.NoError(t, q.Enqueue(ctx, testRecord("good")))

		items, err := q.DequeueWithTimeout(ctx, 10, 100*time.Millisecond)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "good", items[0].RequestID)
	})

	t.Run("connect failure is reported", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()
		mr.Close()

		_, err := NewRedisQueue(client)
		assert.Error(t, err)
	})
}
