package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stallworks/booth-market/internal/app"
	"github.com/stallworks/booth-market/internal/domain"
)

type CheckoutRunner interface {
	Checkout(ctx context.Context, in app.CheckoutInput) ([]domain.Rental, error)
}

// HandleCheckout serves POST /checkout: the whole cart becomes draft rentals
// or nothing does.
func HandleCheckout(svc CheckoutRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req checkoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.CustomerID == "" {
			writeError(w, http.StatusBadRequest, codeValidation, "customer_id is required")
			return
		}

		rentals, err := svc.Checkout(r.Context(), app.CheckoutInput{
			TenantID:    tenantID(r),
			CustomerID:  req.CustomerID,
			HoldIDs:     req.HoldIDs,
			PaymentType: domain.PaymentType(req.PaymentType),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]rentalResponse, 0, len(rentals))
		for _, rental := range rentals {
			out = append(out, rentalResponseFrom(rental))
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

type checkoutRequest struct {
	CustomerID  string   `json:"customer_id"`
	HoldIDs     []string `json:"hold_ids"`
	PaymentType string   `json:"payment_type"`
}
