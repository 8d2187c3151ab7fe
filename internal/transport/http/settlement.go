package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/stallworks/booth-market/internal/app"
	"github.com/stallworks/booth-market/internal/domain"
)

// SettlementActions is the surface of the settlement flow the handlers need.
type SettlementActions interface {
	RecordSale(ctx context.Context, in app.RecordSaleInput) (domain.SettlementLine, error)
	ProcessWithdrawal(ctx context.Context, tenantID, sellerID string) (domain.Withdrawal, error)
	CompleteWithdrawal(ctx context.Context, tenantID, withdrawalID, payoutRef string) (domain.Withdrawal, error)
	RejectWithdrawal(ctx context.Context, tenantID, withdrawalID, reason string) (domain.Withdrawal, error)
}

// HandleSales serves POST /sales: records one item sale with its commission
// split.
func HandleSales(svc SettlementActions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req recordSaleRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		line, err := svc.RecordSale(r.Context(), app.RecordSaleInput{
			TenantID:    tenantID(r),
			ItemID:      req.ItemID,
			SellerID:    req.SellerID,
			Amount:      req.Amount,
			BoothTypeID: req.BoothTypeID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, settlementLineResponse{
			ID:               line.ID,
			ItemID:           line.ItemID,
			SellerID:         line.SellerID,
			Amount:           line.Amount,
			CommissionPct:    line.CommissionPct,
			CommissionAmount: line.CommissionAmount,
			NetAmount:        line.NetAmount,
			CreatedAt:        line.CreatedAt,
		})
	}
}

// HandleWithdrawals serves POST /withdrawals plus the status actions
// POST /withdrawals/{id}/complete and POST /withdrawals/{id}/reject.
func HandleWithdrawals(svc SettlementActions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		if r.URL.Path == "/withdrawals" {
			processWithdrawal(w, r, svc)
			return
		}

		withdrawalID, action, ok := parseWithdrawalPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req withdrawalActionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		var (
			withdrawal domain.Withdrawal
			err        error
		)
		switch action {
		case "complete":
			withdrawal, err = svc.CompleteWithdrawal(r.Context(), tenantID(r), withdrawalID, req.PayoutRef)
		case "reject":
			withdrawal, err = svc.RejectWithdrawal(r.Context(), tenantID(r), withdrawalID, req.Reason)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, withdrawalResponseFrom(withdrawal))
	}
}

func processWithdrawal(w http.ResponseWriter, r *http.Request, svc SettlementActions) {
	var req processWithdrawalRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.SellerID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "seller_id is required")
		return
	}

	withdrawal, err := svc.ProcessWithdrawal(r.Context(), tenantID(r), req.SellerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, withdrawalResponseFrom(withdrawal))
}

type recordSaleRequest struct {
	ItemID      string `json:"item_id"`
	SellerID    string `json:"seller_id"`
	Amount      int64  `json:"amount"`
	BoothTypeID string `json:"booth_type_id"`
}

type settlementLineResponse struct {
	ID               string    `json:"id"`
	ItemID           string    `json:"item_id"`
	SellerID         string    `json:"seller_id"`
	Amount           int64     `json:"amount"`
	CommissionPct    float64   `json:"commission_pct"`
	CommissionAmount int64     `json:"commission_amount"`
	NetAmount        int64     `json:"net_amount"`
	CreatedAt        time.Time `json:"created_at"`
}

type processWithdrawalRequest struct {
	SellerID string `json:"seller_id"`
}

type withdrawalActionRequest struct {
	PayoutRef string `json:"payout_ref"`
	Reason    string `json:"reason"`
}

type withdrawalResponse struct {
	ID          string     `json:"id"`
	SellerID    string     `json:"seller_id"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	PayoutRef   string     `json:"payout_ref,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func withdrawalResponseFrom(w domain.Withdrawal) withdrawalResponse {
	return withdrawalResponse{
		ID:          w.ID,
		SellerID:    w.SellerID,
		Amount:      w.Amount,
		Status:      string(w.Status),
		PayoutRef:   w.PayoutRef,
		Reason:      w.Reason,
		CreatedAt:   w.CreatedAt,
		CompletedAt: w.CompletedAt,
	}
}

func parseWithdrawalPath(path string) (withdrawalID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "withdrawals" || parts[1] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
