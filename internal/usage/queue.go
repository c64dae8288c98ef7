package usage

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned when operating on a closed queue.
var ErrQueueClosed = errors.New("queue is closed")

// Queue buffers usage records between the request path and the batching
// worker. Two backends exist: an in-memory channel queue for standalone
// deployments and a Redis list queue that survives restarts and supports
// multiple gateway pods.
type Queue interface {
	// Enqueue adds a record to the queue.
	Enqueue(ctx context.Context, rec *Record) error

	// DequeueWithTimeout retrieves up to maxItems records, waiting at
	// most timeout for the first one. Returns an empty slice on timeout.
	DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]*Record, error)

	// Length returns the current queue length.
	Length(ctx context.Context) (int, error)

	// Close shuts down the queue.
	Close() error
}

// QueueConfig holds queue and worker tuning.
type QueueConfig struct {
	BatchSize    int
	BatchTimeout time.Duration
	BufferSize   int
}

// DefaultQueueConfig returns the tuning used unless overridden.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		BatchSize:    100,
		BatchTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}
