package worker

import (
	"context"
	"sync"
	"time"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/metrics"
	"haccp-flow/internal/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errorBackoff is how long a worker thread waits after the queue itself failed.
const errorBackoff = time.Second

type Worker struct {
	workerID string
	queue    ports.NotificationQueue
	registry Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewWorker(q ports.NotificationQueue, reg Registry, m *metrics.Metrics, logger *zap.Logger) *Worker {
	id := uuid.New().String()
	return &Worker{
		workerID: id,
		queue:    q,
		registry: reg,
		metrics:  m,
		logger:   logger.Named("worker").With(zap.String("worker_id", id)),
	}
}

// ProcessNext handles at most one queued intent. It reports false when the
// queue could not be read.
func (w *Worker) ProcessNext(ctx context.Context) bool {
	payload, err := w.queue.Pop(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("failed to pop from queue", zap.Error(err))
		}
		return false
	}
	if payload == nil {
		return true
	}

	intent, err := notification.Decode(payload)
	if err != nil {
		w.metrics.Notification("unknown", "malformed")
		w.logger.Error("dropping malformed notification", zap.ByteString("payload", payload), zap.Error(err))
		return true
	}

	log := w.logger.With(
		zap.String("intent_id", intent.ID.String()),
		zap.String("kind", string(intent.Kind)),
		zap.Uint("document_id", intent.DocumentID),
		zap.Uint("user_id", intent.UserID))

	handler, exists := w.registry[intent.Kind]
	if !exists {
		w.metrics.Notification(string(intent.Kind), "unknown_kind")
		log.Error("no handler for notification kind")
		return true
	}

	// Delivery is best effort: a failed message is logged, never retried.
	if err := handler(ctx, intent); err != nil {
		w.metrics.Notification(string(intent.Kind), "failed")
		log.Warn("notification delivery failed", zap.Error(err))
		return true
	}

	w.metrics.Notification(string(intent.Kind), "sent")
	log.Debug("notification delivered")
	return true
}

// StartPool launches concurrency delivery loops that stop when ctx is done.
func (w *Worker) StartPool(ctx context.Context, concurrency int) {
	w.logger.Info("starting notification worker pool", zap.Int("concurrency", concurrency))

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go func(threadID int) {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					w.logger.Debug("worker thread shutting down", zap.Int("thread", threadID))
					return
				default:
				}
				if !w.ProcessNext(ctx) {
					select {
					case <-ctx.Done():
					case <-time.After(errorBackoff):
					}
				}
			}
		}(i)
	}
}

// Wait blocks until every loop started by StartPool has returned.
func (w *Worker) Wait() {
	w.wg.Wait()
}
