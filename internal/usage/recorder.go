package usage

import (
	"context"
)

// Recorder receives usage records from the route layer. Recording is
// best-effort; implementations must never fail a call.
type Recorder interface {
	Record(ctx context.Context, rec *Record) error
	Shutdown(ctx context.Context) error
}

// NoopRecorder discards records. Used when neither the database nor the
// S3 sink is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (r *NoopRecorder) Record(ctx context.Context, rec *Record) error { return nil }

func (r *NoopRecorder) Shutdown(ctx context.Context) error { return nil }

// QueueRecorder feeds records through a queue to a batching worker.
type QueueRecorder struct {
	queue  Queue
	worker *Worker
}

// NewQueueRecorder wires a queue to a started worker.
func NewQueueRecorder(q Queue, w *Worker) *QueueRecorder {
	return &QueueRecorder{queue: q, worker: w}
}

func (r *QueueRecorder) Record(ctx context.Context, rec *Record) error {
	return r.queue.Enqueue(ctx, rec)
}

// Shutdown stops the worker (draining in-flight batches) and closes the
// queue.
func (r *QueueRecorder) Shutdown(ctx context.Context) error {
	if err := r.worker.Stop(ctx); err != nil {
		return err
	}
	return r.queue.Close()
}
