// Package notification turns notification intents into messages. Dispatch
// only queues; delivery happens in the worker pool and never feeds back into
// the decision that produced the intent.
package notification

import (
	"context"
	"encoding/json"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"
	"haccp-flow/internal/metrics"

	"go.uber.org/zap"
)

type QueueDispatcher struct {
	queue   ports.NotificationQueue
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewQueueDispatcher(queue ports.NotificationQueue, m *metrics.Metrics, logger *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{
		queue:   queue,
		metrics: m,
		logger:  logger.Named("dispatcher"),
	}
}

// Dispatch queues every intent. Failures are logged and counted, the caller
// never sees them.
func (d *QueueDispatcher) Dispatch(ctx context.Context, intents []domain.NotificationIntent) {
	for _, intent := range intents {
		payload, err := json.Marshal(intent)
		if err != nil {
			d.fail(intent, err)
			continue
		}
		if err := d.queue.Push(ctx, payload); err != nil {
			d.fail(intent, err)
			continue
		}
		d.metrics.Notification(string(intent.Kind), "queued")
	}
}

func (d *QueueDispatcher) fail(intent domain.NotificationIntent, err error) {
	d.metrics.Notification(string(intent.Kind), "queue_failed")
	d.logger.Warn("failed to queue notification",
		zap.String("intent_id", intent.ID.String()),
		zap.String("kind", string(intent.Kind)),
		zap.Uint("document_id", intent.DocumentID),
		zap.Uint("user_id", intent.UserID),
		zap.Error(err))
}

func Decode(payload []byte) (domain.NotificationIntent, error) {
	var intent domain.NotificationIntent
	err := json.Unmarshal(payload, &intent)
	return intent, err
}
