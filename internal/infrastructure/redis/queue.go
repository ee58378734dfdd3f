package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultQueueName = "haccp:notifications:pending"

type RedisQueue struct {
	client      *redis.Client
	queueName   string
	pollTimeout time.Duration
}

// NewRedisQueue creates a FIFO list queue. Pop gives up after pollTimeout so
// that callers get a chance to notice shutdown.
func NewRedisQueue(client *redis.Client, queueName string, pollTimeout time.Duration) *RedisQueue {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	return &RedisQueue{
		client:      client,
		queueName:   queueName,
		pollTimeout: pollTimeout,
	}
}

// Push adds a payload to the end of the list
func (q *RedisQueue) Push(ctx context.Context, payload []byte) error {
	return q.client.RPush(ctx, q.queueName, payload).Err()
}

// Pop waits for a payload and removes it from the front of the list. It
// returns nil, nil when nothing arrived within the poll window.
func (q *RedisQueue) Pop(ctx context.Context) ([]byte, error) {
	result, err := q.client.BLPop(ctx, q.pollTimeout, q.queueName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BLPop returns a slice: [QueueName, Element]
	return []byte(result[1]), nil
}

// Len reports how many payloads are waiting.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
