package domain

// The engine's error taxonomy. Each category is its own type so callers can
// dispatch with errors.As, while the sentinels below keep direct comparisons
// cheap in services and transport.

// ConflictError means the requested interval collides with existing state.
// Recoverable by the caller picking another interval or booth; never retried
// automatically.
type ConflictError string

func (e ConflictError) Error() string { return string(e) }

// ValidationError means the input was rejected before any state mutation.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// StateError means a lifecycle transition was attempted from an invalid state.
// It signals an ordering bug in the caller and is never retried.
type StateError string

func (e StateError) Error() string { return string(e) }

// StaleError means an optimistic concurrency token no longer matched. Safe to
// retry a bounded number of times after re-reading.
type StaleError string

func (e StaleError) Error() string { return string(e) }

// NotFoundError identifies a missing record.
type NotFoundError string

func (e NotFoundError) Error() string { return string(e) }

var (
	ErrBoothUnavailable = ConflictError("booth unavailable for requested interval")
	ErrHoldExpired      = ConflictError("hold expired")

	ErrInvalidInterval    = ValidationError("end date must be after start date")
	ErrInvalidDays        = ValidationError("day count must be positive")
	ErrInvalidAmount      = ValidationError("amount must be positive")
	ErrInvalidCommission  = ValidationError("commission percentage must be between 0 and 100")
	ErrInvalidPaymentType = ValidationError("unknown payment type")
	ErrGapTooSmall        = ValidationError("interval leaves a gap shorter than the tenant minimum")
	ErrInvalidID          = ValidationError("invalid id")
	ErrTenantRequired     = ValidationError("tenant id required")
	ErrEmptyCart          = ValidationError("no holds to check out")
	ErrNoTiers            = ValidationError("booth type has no pricing tiers")
	ErrBadTiers           = ValidationError("pricing tiers must be strictly increasing in min days")
	ErrPayoutRefRequired  = ValidationError("payout reference required")
	ErrNothingToWithdraw  = ValidationError("no unsettled sales to withdraw")
	ErrNameRequired       = ValidationError("name required")

	ErrRentalNotDraft      = StateError("rental is not in draft")
	ErrRentalNotExtendable = StateError("rental cannot be extended from its current state")
	ErrRentalExpired       = StateError("rental already expired")
	ErrWithdrawalState     = StateError("withdrawal cannot transition from its current state")
	ErrHoldNotDeferred     = StateError("hold is not a deferred extension")
	ErrDeferredHoldInCart  = StateError("deferred extension holds are settled on payment confirmation")

	ErrStaleRental = StaleError("rental was modified concurrently")

	ErrBoothNotFound      = NotFoundError("booth not found")
	ErrBoothTypeNotFound  = NotFoundError("booth type not found")
	ErrHoldNotFound       = NotFoundError("hold not found")
	ErrRentalNotFound     = NotFoundError("rental not found")
	ErrWithdrawalNotFound = NotFoundError("withdrawal not found")
	ErrTenantNotFound     = NotFoundError("tenant not found")
)
