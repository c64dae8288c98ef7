package usage

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue implements Queue on a buffered channel. Records are lost on
// restart, which is acceptable for best-effort telemetry.
type MemoryQueue struct {
	items chan *Record

	mu     sync.RWMutex
	closed bool
}

// NewMemoryQueue creates a new in-memory queue.
func NewMemoryQueue(cfg QueueConfig) *MemoryQueue {
	size := cfg.BufferSize
	if size <= 0 {
		size = DefaultQueueConfig().BufferSize
	}
	return &MemoryQueue{
		items: make(chan *Record, size),
	}
}

// Enqueue adds a record; a full buffer drops it rather than blocking the
// request path.
func (q *MemoryQueue) Enqueue(ctx context.Context, rec *Record) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil // drop on overflow
	}
}

// DequeueWithTimeout retrieves up to maxItems records.
func (q *MemoryQueue) DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]*Record, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, ErrQueueClosed
	}
	q.mu.RUnlock()

	var items []*Record
	deadline := time.After(timeout)

	select {
	case rec := <-q.items:
		items = append(items, rec)
	case <-deadline:
		return items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	for len(items) < maxItems {
		select {
		case rec := <-q.items:
			items = append(items, rec)
		default:
			return items, nil
		}
	}

	return items, nil
}

// Length returns the current queue length.
func (q *MemoryQueue) Length(ctx context.Context) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return 0, ErrQueueClosed
	}
	return len(q.items), nil
}

// Close shuts down the queue. Buffered records are still drainable by a
// worker already holding a reference to the channel.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.closed = true
	return nil
}
