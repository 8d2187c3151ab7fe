package domain

import "time"

type EventType string

const (
	EventHoldCreated        EventType = "hold.created"
	EventHoldReleased       EventType = "hold.released"
	EventRentalCreated      EventType = "rental.created"
	EventRentalConfirmed    EventType = "rental.confirmed"
	EventRentalExtended     EventType = "rental.extended"
	EventRentalExpired      EventType = "rental.expired"
	EventRentalCancelled    EventType = "rental.cancelled"
	EventWithdrawalCreated  EventType = "withdrawal.created"
	EventWithdrawalSettled  EventType = "withdrawal.settled"
	EventWithdrawalRejected EventType = "withdrawal.rejected"
)

// LifecycleEvent is published after a committed state transition. The engine
// emits it fire-and-forget; consumers (booth status refresh, notifications)
// are outside this module.
type LifecycleEvent struct {
	Type       EventType `json:"type"`
	TenantID   string    `json:"tenant_id"`
	BoothID    string    `json:"booth_id,omitempty"`
	RentalID   string    `json:"rental_id,omitempty"`
	HoldID     string    `json:"hold_id,omitempty"`
	SubjectID  string    `json:"subject_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
