package queue

import (
	"context"
	"errors"
)

// ErrEmpty is returned by Dequeue when no work unit arrived within the
// poll timeout.
var ErrEmpty = errors.New("queue empty")

// TenantJob is one unit of batch work: run predictions for every active
// product of a single tenant. Delivery is at-least-once; workers tolerate
// duplicates because recomputation is idempotent.
type TenantJob struct {
	TenantID string `json:"tenant_id"`
}

// WorkQueue dispatches tenant jobs to worker invocations.
type WorkQueue interface {
	Enqueue(ctx context.Context, job TenantJob) error
	Dequeue(ctx context.Context) (TenantJob, error)
}
