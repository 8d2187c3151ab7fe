package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stallworks/booth-market/internal/app"
	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/domain"
	"github.com/stallworks/booth-market/internal/testutil"
)

type discardSink struct{}

func (discardSink) Publish(context.Context, domain.LifecycleEvent) error { return nil }

// Two goroutines race to hold the same booth for overlapping intervals. The
// booth row lock inside the reserving transaction must let exactly one win.
func TestHoldService_ConcurrentCreate(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	tenantID, _, boothID := testutil.InsertTenantAndBooth(t, ctx, pool, 0, testTiers)

	checker := app.NewAvailabilityChecker(NewAvailabilityRepository(pool), NewTenantRepository(pool), clock.NewSystem())
	svc := app.NewHoldService(NewHoldRepository(pool), checker, clock.NewSystem(), discardSink{})

	start := time.Now().UTC().AddDate(0, 0, 7)
	inputs := []app.CreateHoldInput{
		{
			TenantID:   tenantID,
			BoothID:    boothID,
			CustomerID: "9a1cb85f-3d3e-4a27-a810-91f0f4bb2601",
			Start:      start,
			End:        start.AddDate(0, 0, 5),
		},
		{
			TenantID:   tenantID,
			BoothID:    boothID,
			CustomerID: "9a1cb85f-3d3e-4a27-a810-91f0f4bb2602",
			Start:      start.AddDate(0, 0, 2),
			End:        start.AddDate(0, 0, 8),
		},
	}

	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in app.CreateHoldInput) {
			defer wg.Done()
			_, errs[i] = svc.CreateHold(ctx, in)
		}(i, in)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch err {
		case nil:
			wins++
		case domain.ErrBoothUnavailable:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner, got %d wins / %d conflicts", wins, conflicts)
	}

	var stored int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM holds`).Scan(&stored); err != nil {
		t.Fatalf("count holds: %v", err)
	}
	if stored != 1 {
		t.Fatalf("expected 1 stored hold, got %d", stored)
	}
}
