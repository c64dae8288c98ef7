package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisQueueKey = "csvchat:usage"

// RedisQueue implements Queue on a Redis list, so records survive
// restarts and several gateway pods can share one worker.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a Redis-backed queue on an existing client.
func NewRedisQueue(client *redis.Client) (*RedisQueue, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{client: client}, nil
}

// Enqueue adds a record to the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := q.client.RPush(ctx, redisQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push to Redis: %w", err)
	}

	return nil
}

// DequeueWithTimeout retrieves up to maxItems records, blocking at most
// timeout for the first one.
func (q *RedisQueue) DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]*Record, error) {
	result, err := q.client.BLPop(ctx, timeout, redisQueueKey).Result()
	if err == redis.Nil {
		return []*Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop from Redis: %w", err)
	}

	// result[0] is the key, result[1] is the value.
	items := make([]*Record, 0, maxItems)
	if rec := decodeRecord([]byte(result[1])); rec != nil {
		items = append(items, rec)
	}

	for len(items) < maxItems {
		data, err := q.client.LPop(ctx, redisQueueKey).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return items, nil // return what we have
		}
		if rec := decodeRecord([]byte(data)); rec != nil {
			items = append(items, rec)
		}
	}

	return items, nil
}

// Length returns the current queue length.
func (q *RedisQueue) Length(ctx context.Context) (int, error) {
	length, err := q.client.LLen(ctx, redisQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return int(length), nil
}

// Close is a no-op; the Redis client is shared and closed by its owner.
func (q *RedisQueue) Close() error {
	return nil
}

func decodeRecord(data []byte) *Record {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil // skip malformed entries
	}
	return &rec
}
