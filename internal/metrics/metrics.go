package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer, every method is then a no-op.
type Metrics struct {
	decisions        *prometheus.CounterVec
	decisionDuration prometheus.Histogram
	notifications    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "approval_decisions_total",
			Help: "Task decisions by decision and outcome code.",
		}, []string{"decision", "outcome"}),
		decisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "approval_decision_duration_seconds",
			Help:    "Time spent deciding a task, transaction included.",
			Buckets: prometheus.DefBuckets,
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Notification intents by kind and delivery result.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(m.decisions, m.decisionDuration, m.notifications)
	return m
}

func (m *Metrics) ObserveDecision(decision, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision, outcome).Inc()
	m.decisionDuration.Observe(took.Seconds())
}

func (m *Metrics) Notification(kind, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

// QueueLength is implemented by queues that can report their backlog.
type QueueLength interface {
	Len(ctx context.Context) (int64, error)
}

// RegisterQueueDepth exports the backlog of q, read at scrape time. A failed
// read reports -1.
func RegisterQueueDepth(reg prometheus.Registerer, q QueueLength) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "notification_queue_depth",
		Help: "Notification intents waiting for delivery.",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := q.Len(ctx)
		if err != nil {
			return -1
		}
		return float64(n)
	}))
}
