package alerting

import (
	"context"

	"github.com/saai/forecast-backend/internal/domain"
)

// AlertSink delivers critical alerts to the notification channel.
// Publishing is fire-and-forget: a failed publish is logged by the caller
// and never fails the surrounding batch.
type AlertSink interface {
	Publish(ctx context.Context, alert domain.Alert) error
}

// NoopSink drops alerts; used in tests and when alerting is not wired.
type NoopSink struct{}

func (NoopSink) Publish(ctx context.Context, alert domain.Alert) error { return nil }
