package app

import (
	"context"
	"time"

	"github.com/stallworks/booth-market/internal/domain"
)

// EventSink receives lifecycle events after a committed transition. Publishing
// is fire-and-forget: the engine never fails an operation because a consumer
// is down.
type EventSink interface {
	Publish(ctx context.Context, ev domain.LifecycleEvent) error
}

// BoothLocker is an optional distributed lock taken before the reserving
// transaction. It narrows the contention window across instances; correctness
// is still guaranteed by the booth row lock inside the transaction.
type BoothLocker interface {
	AcquireBoothLock(ctx context.Context, tenantID, boothID string, ttl time.Duration) (bool, error)
	ReleaseBoothLock(ctx context.Context, tenantID, boothID string) error
}

// TenantSettings exposes per-tenant policy knobs.
type TenantSettings interface {
	MinimumGapDays(ctx context.Context, tenantID string) (int, error)
}
