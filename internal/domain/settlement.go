package domain

import "time"

// SettlementLine is one sold item's commission split. CommissionPct is
// captured at sale time so later booth-type edits never change historical
// settlements.
type SettlementLine struct {
	ID               string
	TenantID         string
	ItemID           string
	SellerID         string
	Amount           int64
	CommissionPct    float64
	CommissionAmount int64
	NetAmount        int64
	WithdrawalID     string
	CreatedAt        time.Time
}

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusCancelled  WithdrawalStatus = "cancelled"
)

// Withdrawal aggregates a seller's unsettled lines into one payout.
type Withdrawal struct {
	ID          string
	TenantID    string
	SellerID    string
	Amount      int64
	Status      WithdrawalStatus
	PayoutRef   string
	Reason      string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
