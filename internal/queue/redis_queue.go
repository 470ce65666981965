package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a WorkQueue over a redis list: LPUSH to enqueue, blocking
// BRPOP to consume. One message per tenant, consumed by one worker.
type RedisQueue struct {
	client      *redis.Client
	name        string
	pollTimeout time.Duration
}

func NewRedisQueue(client *redis.Client, name string, pollTimeout time.Duration) *RedisQueue {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &RedisQueue{client: client, name: name, pollTimeout: pollTimeout}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job TenantJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode tenant job: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush failed: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (TenantJob, error) {
	res, err := q.client.BRPop(ctx, q.pollTimeout, q.name).Result()
	if err == redis.Nil {
		return TenantJob{}, ErrEmpty
	}
	if err != nil {
		return TenantJob{}, fmt.Errorf("redis brpop failed: %w", err)
	}

	// BRPop returns [key, value].
	var job TenantJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return TenantJob{}, fmt.Errorf("decode tenant job: %w", err)
	}
	return job, nil
}

var _ WorkQueue = (*RedisQueue)(nil)
