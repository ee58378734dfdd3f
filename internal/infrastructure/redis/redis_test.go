package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, func() *RedisQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), 4)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, func() *RedisQueue { return NewRedisQueue(client, "", 100*time.Millisecond) }
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisClient(context.Background(), addr, 1)
	assert.Error(t, err)
}

func TestRedisQueue_FIFO(t *testing.T) {
	_, newQueue := newTestClient(t)
	q := newQueue()
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, []byte("first")))
	require.NoError(t, q.Push(ctx, []byte("second")))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	got, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestRedisQueue_PopEmptyTimesOut(t *testing.T) {
	_, newQueue := newTestClient(t)
	q := newQueue()

	got, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuditModeFlag(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), 1)
	require.NoError(t, err)
	defer client.Close()

	f := NewAuditModeFlag(client, "")
	ctx := context.Background()

	on, err := f.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, f.Set(ctx, true))
	on, err = f.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	raw, err := mr.Get(DefaultAuditModeKey)
	require.NoError(t, err)
	assert.Equal(t, "1", raw)

	require.NoError(t, f.Set(ctx, false))
	on, err = f.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, on)
}
