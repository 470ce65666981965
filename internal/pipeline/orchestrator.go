package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/saai/forecast-backend/internal/queue"
	"github.com/saai/forecast-backend/internal/repository"
)

// Orchestrator runs one dispatch pass: list active tenants, enqueue one
// work unit per tenant. It does no forecasting itself; workers pick the
// units up independently.
type Orchestrator struct {
	tenants repository.TenantRepository
	queue   queue.WorkQueue
}

func NewOrchestrator(tenants repository.TenantRepository, q queue.WorkQueue) *Orchestrator {
	return &Orchestrator{tenants: tenants, queue: q}
}

// Run enqueues one job per active tenant and returns how many were
// enqueued. A single tenant's enqueue failure is logged and skipped; the
// next scheduled pass picks it up again.
func (o *Orchestrator) Run(ctx context.Context) (int, error) {
	tenants, err := o.tenants.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active tenants: %w", err)
	}

	enqueued := 0
	for _, tenant := range tenants {
		if err := o.queue.Enqueue(ctx, queue.TenantJob{TenantID: tenant.ID}); err != nil {
			log.Error().Err(err).Str("tenant", tenant.ID).Msg("orchestrator: enqueue failed")
			continue
		}
		enqueued++
	}

	log.Info().Int("tenants", len(tenants)).Int("enqueued", enqueued).
		Msg("orchestrator: dispatch pass completed")
	return enqueued, nil
}
