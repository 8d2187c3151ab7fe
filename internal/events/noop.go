package events

import (
	"context"

	"github.com/stallworks/booth-market/internal/domain"
)

// NoopSink discards events. Used when no broker is configured.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, domain.LifecycleEvent) error { return nil }
