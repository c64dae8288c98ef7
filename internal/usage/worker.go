package usage

import (
	"context"
	"time"

	"csvchat/internal/utils"
)

// Writer persists a batch of records somewhere: the postgres repository,
// the S3 sink, or both.
type Writer interface {
	WriteBatch(ctx context.Context, records []*Record) error
}

// Worker drains the queue in batches and fans each batch out to every
// writer. A writer failure is logged and the batch moves on; usage data
// is best-effort.
type Worker struct {
	queue       Queue
	writers     []Writer
	config      QueueConfig
	logger      *utils.Logger
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewWorker creates a worker. Call Start to begin draining.
func NewWorker(q Queue, cfg QueueConfig, writers ...Writer) *Worker {
	if cfg.BatchSize <= 0 {
		cfg = DefaultQueueConfig()
	}
	return &Worker{
		queue:       q,
		writers:     writers,
		config:      cfg,
		logger:      utils.NewLogger("usage-worker"),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start starts the worker goroutine.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop gracefully stops the worker.
func (w *Worker) Stop(ctx context.Context) error {
	close(w.stopChan)
	select {
	case <-w.stoppedChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.stoppedChan)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("usage worker stopping")
			return
		case <-ctx.Done():
			w.logger.Info("usage worker context cancelled")
			return
		default:
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	records, err := w.queue.DequeueWithTimeout(ctx, w.config.BatchSize, w.config.BatchTimeout)
	if err != nil {
		if err == ErrQueueClosed || ctx.Err() != nil {
			return
		}
		w.logger.Error("failed to dequeue usage records", "error", err)
		time.Sleep(1 * time.Second) // back off on error
		return
	}

	if len(records) == 0 {
		return
	}

	w.logger.Debug("processing usage batch", "count", len(records))

	for _, writer := range w.writers {
		if err := w.writeBatch(ctx, writer, records); err != nil {
			w.logger.Error("failed to write usage batch", "error", err, "count", len(records))
		}
	}
}

func (w *Worker) writeBatch(ctx context.Context, writer Writer, records []*Record) error {
	// The request context may be long gone; give the write its own bound.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	return writer.WriteBatch(writeCtx, records)
}
