package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureWriter collects every batch it receives.
type captureWriter struct {
	mu      sync.Mutex
	batches [][]*Record
	fail    bool
}

func (w *captureWriter) WriteBatch(ctx context.Context, records []*Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("writer down")
	}
	w.batches = append(w.batches, records)
	return nil
}

func (w *captureWriter) total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestWorkerDrainsQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(QueueConfig{BufferSize: 100})
	sink := &captureWriter{}

	w := NewWorker(q, QueueConfig{BatchSize: 10, BatchTimeout: 20 * time.Millisecond, BufferSize: 100}, sink)
	w.Start(ctx)
	defer w.Stop(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(ctx, testRecord("req")))
	}

	waitFor(t, func() bool { return sink.total() == 5 })
}

func TestWorkerFansOutToAllWriters(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(QueueConfig{BufferSize: 100})
	first := &captureWriter{}
	second := &captureWriter{}

	w := NewWorker(q, QueueConfig{BatchSize: 10, BatchTimeout: 20 * time.Millisecond, BufferSize: 100}, first, second)
	w.Start(ctx)
	defer w.Stop(context.Background())

	require.NoError(t, q.Enqueue(ctx, testRecord("req")))

	waitFor(t, func() bool { return first.total() == 1 && second.total() == 1 })
}

func TestWorkerSurvivesWriterFailure(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(QueueConfig{BufferSize: 100})
	broken := &captureWriter{fail: true}
	healthy := &captureWriter{}

	w := NewWorker(q, QueueConfig{BatchSize: 10, BatchTimeout: 20 * time.Millisecond, BufferSize: 100}, broken, healthy)
	w.Start(ctx)
	defer w.Stop(context.Background())

	require.NoError(t, q.Enqueue(ctx, testRecord("req")))

	// The failing writer does not stop the healthy one.
	waitFor(t, func() bool { return healthy.total() == 1 })
}

func TestWorkerStop(t *testing.T) {
	q := NewMemoryQueue(QueueConfig{BufferSize: 100})
	w := NewWorker(q, QueueConfig{BatchSize: 10, BatchTimeout: 20 * time.Millisecond, BufferSize: 100}, &captureWriter{})
	w.Start(context.Background())

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, w.Stop(stopCtx))
}

func TestQueueRecorder(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(QueueConfig{BufferSize: 100})
	sink := &captureWriter{}
	w := NewWorker(q, QueueConfig{BatchSize: 10, BatchTimeout: 20 * time.Millisecond, BufferSize: 100}, sink)
	w.Start(ctx)

	r := NewQueueRecorder(q, w)
	require.NoError(t, r.Record(ctx, testRecord("req-rec")))
	waitFor(t, func() bool { return sink.total() == 1 })

	require.NoError(t, r.Shutdown(context.Background()))

	// Recording after shutdown fails but never panics.
	assert.ErrorIs(t, r.Record(ctx, testRecord("req-late")), ErrQueueClosed)
}

func TestNoopRecorder(t *testing.T) {
	r := NewNoopRecorder()
	assert.NoError(t, r.Record(context.Background(), testRecord("req")))
	assert.NoError(t, r.Shutdown(context.Background()))
}
