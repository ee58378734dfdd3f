package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveDecision("complete", "ok", 20*time.Millisecond)
	m.ObserveDecision("complete", "ok", 10*time.Millisecond)
	m.ObserveDecision("skip", "skip_not_allowed", time.Millisecond)
	m.Notification("author", "queued")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.decisions.WithLabelValues("complete", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("skip", "skip_not_allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("author", "queued")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.decisionDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDecision("reject", "ok", time.Second)
		m.Notification("assignee", "sent")
	})
}

type stubQueue struct {
	n   int64
	err error
}

func (q *stubQueue) Len(ctx context.Context) (int64, error) { return q.n, q.err }

func TestRegisterQueueDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	q := &stubQueue{n: 12}
	RegisterQueueDepth(reg, q)

	const head = `
# HELP notification_queue_depth Notification intents waiting for delivery.
# TYPE notification_queue_depth gauge
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(head+"notification_queue_depth 12\n"), "notification_queue_depth"))

	q.err = errors.New("redis: connection refused")
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(head+"notification_queue_depth -1\n"), "notification_queue_depth"))
}
