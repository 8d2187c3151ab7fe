package app

import (
	"context"
	"sync"
	"time"

	"github.com/stallworks/booth-market/internal/domain"
)

// memStore is an in-memory stand-in for the postgres repositories. WithTx
// holds the store mutex for the whole closure and rolls back on error, which
// models the row-lock serialization and atomicity the real layer provides.
type memStore struct {
	mu          sync.Mutex
	booths      map[string]domain.Booth
	boothTypes  map[string]domain.BoothType
	holds       map[string]domain.Hold
	rentals     map[string]domain.Rental
	extensions  []domain.Extension
	lines       map[string]domain.SettlementLine
	withdrawals map[string]domain.Withdrawal
	minGapDays  int
}

func newMemStore() *memStore {
	return &memStore{
		booths:      make(map[string]domain.Booth),
		boothTypes:  make(map[string]domain.BoothType),
		holds:       make(map[string]domain.Hold),
		rentals:     make(map[string]domain.Rental),
		lines:       make(map[string]domain.SettlementLine),
		withdrawals: make(map[string]domain.Withdrawal),
	}
}

type memTxKey struct{}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lock takes the store mutex unless the caller already runs inside WithTx.
func (s *memStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memSnapshot struct {
	booths      map[string]domain.Booth
	boothTypes  map[string]domain.BoothType
	holds       map[string]domain.Hold
	rentals     map[string]domain.Rental
	extensions  []domain.Extension
	lines       map[string]domain.SettlementLine
	withdrawals map[string]domain.Withdrawal
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		booths:      copyMap(s.booths),
		boothTypes:  copyMap(s.boothTypes),
		holds:       copyMap(s.holds),
		rentals:     copyMap(s.rentals),
		extensions:  append([]domain.Extension{}, s.extensions...),
		lines:       copyMap(s.lines),
		withdrawals: copyMap(s.withdrawals),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.booths = snap.booths
	s.boothTypes = snap.boothTypes
	s.holds = snap.holds
	s.rentals = snap.rentals
	s.extensions = snap.extensions
	s.lines = snap.lines
	s.withdrawals = snap.withdrawals
}

func copyMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// --- booths and booth types ---

func (s *memStore) GetBooth(ctx context.Context, tenantID, boothID string) (domain.Booth, error) {
	defer s.lock(ctx)()
	b, ok := s.booths[boothID]
	if !ok || b.TenantID != tenantID {
		return domain.Booth{}, domain.ErrBoothNotFound
	}
	return b, nil
}

func (s *memStore) GetBoothForUpdate(ctx context.Context, tenantID, boothID string) (domain.Booth, error) {
	return s.GetBooth(ctx, tenantID, boothID)
}

func (s *memStore) GetBoothType(ctx context.Context, tenantID, boothTypeID string) (domain.BoothType, error) {
	defer s.lock(ctx)()
	bt, ok := s.boothTypes[boothTypeID]
	if !ok || bt.TenantID != tenantID {
		return domain.BoothType{}, domain.ErrBoothTypeNotFound
	}
	return bt, nil
}

func (s *memStore) CreateBoothType(ctx context.Context, bt domain.BoothType) error {
	defer s.lock(ctx)()
	s.boothTypes[bt.ID] = bt
	return nil
}

func (s *memStore) ReplaceTiers(ctx context.Context, tenantID, boothTypeID string, version int, tiers []domain.PricingTier) error {
	defer s.lock(ctx)()
	bt, ok := s.boothTypes[boothTypeID]
	if !ok || bt.TenantID != tenantID {
		return domain.ErrBoothTypeNotFound
	}
	bt.TierVersion = version
	bt.Tiers = tiers
	s.boothTypes[boothTypeID] = bt
	return nil
}

func (s *memStore) CreateBooth(ctx context.Context, booth domain.Booth) error {
	defer s.lock(ctx)()
	s.booths[booth.ID] = booth
	return nil
}

func (s *memStore) ListBooths(ctx context.Context, tenantID string) ([]domain.Booth, error) {
	defer s.lock(ctx)()
	var out []domain.Booth
	for _, b := range s.booths {
		if b.TenantID == tenantID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) SetMaintenance(ctx context.Context, tenantID, boothID string, maintenance bool) error {
	defer s.lock(ctx)()
	b, ok := s.booths[boothID]
	if !ok || b.TenantID != tenantID {
		return domain.ErrBoothNotFound
	}
	b.Maintenance = maintenance
	s.booths[boothID] = b
	return nil
}

func (s *memStore) BoothOccupancy(ctx context.Context, tenantID, boothID string, day domain.Interval) (bool, bool, error) {
	defer s.lock(ctx)()
	rented, reserved := false, false
	for _, r := range s.rentals {
		if r.TenantID != tenantID || r.BoothID != boothID || !r.Interval.Overlaps(day) {
			continue
		}
		switch r.Status {
		case domain.RentalStatusActive, domain.RentalStatusExtended:
			rented = true
		case domain.RentalStatusDraft:
			reserved = true
		}
	}
	for _, h := range s.holds {
		if h.TenantID == tenantID && h.BoothID == boothID && !h.IsExtension() && h.Interval.Overlaps(day) {
			reserved = true
		}
	}
	return rented, reserved, nil
}

// --- holds ---

func (s *memStore) CreateHold(ctx context.Context, hold domain.Hold) error {
	defer s.lock(ctx)()
	s.holds[hold.ID] = hold
	return nil
}

func (s *memStore) GetHold(ctx context.Context, tenantID, holdID string) (domain.Hold, error) {
	defer s.lock(ctx)()
	h, ok := s.holds[holdID]
	if !ok || h.TenantID != tenantID {
		return domain.Hold{}, domain.ErrHoldNotFound
	}
	return h, nil
}

func (s *memStore) GetHoldForUpdate(ctx context.Context, tenantID, holdID string) (domain.Hold, error) {
	return s.GetHold(ctx, tenantID, holdID)
}

func (s *memStore) DeleteHold(ctx context.Context, tenantID, holdID string) error {
	defer s.lock(ctx)()
	h, ok := s.holds[holdID]
	if !ok || h.TenantID != tenantID {
		return domain.ErrHoldNotFound
	}
	delete(s.holds, holdID)
	return nil
}

func (s *memStore) ListHoldsByCustomer(ctx context.Context, tenantID, customerID string, now time.Time) ([]domain.Hold, error) {
	defer s.lock(ctx)()
	var out []domain.Hold
	for _, h := range s.holds {
		if h.TenantID == tenantID && h.CustomerID == customerID && !h.Expired(now) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memStore) DeleteExpiredHolds(ctx context.Context, before time.Time) (int, error) {
	defer s.lock(ctx)()
	count := 0
	for id, h := range s.holds {
		if h.Expired(before) {
			delete(s.holds, id)
			count++
		}
	}
	return count, nil
}

// --- rentals ---

func (s *memStore) CreateRental(ctx context.Context, rental domain.Rental) error {
	defer s.lock(ctx)()
	s.rentals[rental.ID] = rental
	return nil
}

func (s *memStore) GetRental(ctx context.Context, tenantID, rentalID string) (domain.Rental, error) {
	defer s.lock(ctx)()
	r, ok := s.rentals[rentalID]
	if !ok || r.TenantID != tenantID {
		return domain.Rental{}, domain.ErrRentalNotFound
	}
	return r, nil
}

func (s *memStore) UpdateRental(ctx context.Context, rental domain.Rental, expectVersion int) error {
	defer s.lock(ctx)()
	cur, ok := s.rentals[rental.ID]
	if !ok {
		return domain.ErrRentalNotFound
	}
	if cur.Version != expectVersion {
		return domain.ErrStaleRental
	}
	s.rentals[rental.ID] = rental
	return nil
}

func (s *memStore) CreateExtension(ctx context.Context, ext domain.Extension) error {
	defer s.lock(ctx)()
	s.extensions = append(s.extensions, ext)
	return nil
}

func (s *memStore) ListDueRentals(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	defer s.lock(ctx)()
	var out []domain.Rental
	for _, r := range s.rentals {
		if (r.Status == domain.RentalStatusActive || r.Status == domain.RentalStatusExtended) &&
			!r.Interval.End.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- availability + settings ---

func (s *memStore) ActiveHoldsForBooth(ctx context.Context, tenantID, boothID string, now time.Time) ([]domain.Hold, error) {
	defer s.lock(ctx)()
	var out []domain.Hold
	for _, h := range s.holds {
		if h.TenantID == tenantID && h.BoothID == boothID && !h.Expired(now) && !h.IsExtension() {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memStore) OccupyingRentalsForBooth(ctx context.Context, tenantID, boothID string) ([]domain.Rental, error) {
	defer s.lock(ctx)()
	var out []domain.Rental
	for _, r := range s.rentals {
		if r.TenantID == tenantID && r.BoothID == boothID && r.Status.Occupying() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) MinimumGapDays(ctx context.Context, tenantID string) (int, error) {
	defer s.lock(ctx)()
	return s.minGapDays, nil
}

// --- settlement ---

func (s *memStore) CreateSettlementLine(ctx context.Context, line domain.SettlementLine) error {
	defer s.lock(ctx)()
	s.lines[line.ID] = line
	return nil
}

func (s *memStore) ListUnattachedLinesForUpdate(ctx context.Context, tenantID, sellerID string) ([]domain.SettlementLine, error) {
	defer s.lock(ctx)()
	var out []domain.SettlementLine
	for _, l := range s.lines {
		if l.TenantID == tenantID && l.SellerID == sellerID && l.WithdrawalID == "" {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *memStore) AttachLines(ctx context.Context, tenantID, withdrawalID string, lineIDs []string) error {
	defer s.lock(ctx)()
	for _, id := range lineIDs {
		l, ok := s.lines[id]
		if !ok || l.TenantID != tenantID {
			return domain.ErrInvalidID
		}
		l.WithdrawalID = withdrawalID
		s.lines[id] = l
	}
	return nil
}

func (s *memStore) DetachLines(ctx context.Context, tenantID, withdrawalID string) error {
	defer s.lock(ctx)()
	for id, l := range s.lines {
		if l.TenantID == tenantID && l.WithdrawalID == withdrawalID {
			l.WithdrawalID = ""
			s.lines[id] = l
		}
	}
	return nil
}

func (s *memStore) CreateWithdrawal(ctx context.Context, w domain.Withdrawal) error {
	defer s.lock(ctx)()
	s.withdrawals[w.ID] = w
	return nil
}

func (s *memStore) GetWithdrawalForUpdate(ctx context.Context, tenantID, withdrawalID string) (domain.Withdrawal, error) {
	defer s.lock(ctx)()
	w, ok := s.withdrawals[withdrawalID]
	if !ok || w.TenantID != tenantID {
		return domain.Withdrawal{}, domain.ErrWithdrawalNotFound
	}
	return w, nil
}

func (s *memStore) UpdateWithdrawal(ctx context.Context, w domain.Withdrawal) error {
	defer s.lock(ctx)()
	if _, ok := s.withdrawals[w.ID]; !ok {
		return domain.ErrWithdrawalNotFound
	}
	s.withdrawals[w.ID] = w
	return nil
}

// recordingLocker grants every lock and records the requested TTLs.
type recordingLocker struct {
	mu       sync.Mutex
	acquired int
	released int
	lastTTL  time.Duration
}

func (l *recordingLocker) AcquireBoothLock(_ context.Context, _, _ string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired++
	l.lastTTL = ttl
	return true, nil
}

func (l *recordingLocker) ReleaseBoothLock(_ context.Context, _, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released++
	return nil
}

// captureSink records published lifecycle events.
type captureSink struct {
	mu     sync.Mutex
	events []domain.LifecycleEvent
}

func (c *captureSink) Publish(_ context.Context, ev domain.LifecycleEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *captureSink) byType(t domain.EventType) []domain.LifecycleEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.LifecycleEvent
	for _, ev := range c.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// day returns the UTC midnight n days after the fixed test epoch.
var testEpoch = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return testEpoch.AddDate(0, 0, n)
}

func ivl(startDay, endDay int) domain.Interval {
	return domain.Interval{Start: day(startDay), End: day(endDay)}
}

func seedBooth(s *memStore, tenantID, boothID, typeID string, tiers []domain.PricingTier, pct float64) {
	s.boothTypes[typeID] = domain.BoothType{
		ID:            typeID,
		TenantID:      tenantID,
		Name:          "standard",
		CommissionPct: pct,
		TierVersion:   1,
		Tiers:         tiers,
	}
	s.booths[boothID] = domain.Booth{
		ID:          boothID,
		TenantID:    tenantID,
		BoothTypeID: typeID,
		Label:       boothID,
	}
}
