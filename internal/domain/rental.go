package domain

import "time"

type RentalStatus string

const (
	RentalStatusDraft     RentalStatus = "draft"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusExtended  RentalStatus = "extended"
	RentalStatusExpired   RentalStatus = "expired"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s RentalStatus) Terminal() bool {
	return s == RentalStatusExpired || s == RentalStatusCancelled
}

// Occupying reports whether a rental in this status blocks the booth's
// availability.
func (s RentalStatus) Occupying() bool {
	return s == RentalStatusDraft || s == RentalStatusActive || s == RentalStatusExtended
}

type PaymentType string

const (
	PaymentFree     PaymentType = "free"
	PaymentCash     PaymentType = "cash"
	PaymentTerminal PaymentType = "terminal"
	PaymentOnline   PaymentType = "online"
)

// ValidPaymentType reports whether t is one of the four supported paths.
func ValidPaymentType(t PaymentType) bool {
	switch t {
	case PaymentFree, PaymentCash, PaymentTerminal, PaymentOnline:
		return true
	}
	return false
}

// Rental is a confirmed booking of a booth for an interval. Version is the
// optimistic concurrency token bumped on every mutation.
type Rental struct {
	ID          string
	TenantID    string
	BoothID     string
	CustomerID  string
	Interval    Interval
	PriceTotal  int64
	Breakdown   PriceBreakdown
	Status      RentalStatus
	PaymentType PaymentType
	Version     int
	CreatedAt   time.Time
	ActivatedAt *time.Time
	CancelledAt *time.Time
	ExpiredAt   *time.Time
}

// Extension records one applied prolongation of a rental.
type Extension struct {
	ID          string
	TenantID    string
	RentalID    string
	PaymentType PaymentType
	PaymentRef  string
	Days        int
	Cost        int64
	NewEnd      time.Time
	CreatedAt   time.Time
}
