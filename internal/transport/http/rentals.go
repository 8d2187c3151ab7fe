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

// RentalLifecycle is the surface of the rental state machine the handlers
// need.
type RentalLifecycle interface {
	Get(ctx context.Context, tenantID, rentalID string) (domain.Rental, error)
	Confirm(ctx context.Context, tenantID, rentalID string) (domain.Rental, error)
	Cancel(ctx context.Context, tenantID, rentalID string) (domain.Rental, error)
}

type ExtensionRequester interface {
	RequestExtension(ctx context.Context, in app.RequestExtensionInput) (app.ExtensionResult, error)
}

// HandleRentals serves GET /rentals/{id} and the lifecycle actions
// POST /rentals/{id}/confirm, /cancel and /extend.
func HandleRentals(svc RentalLifecycle, ext ExtensionRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rentalID, action, ok := parseRentalPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			rental, err := svc.Get(r.Context(), tenantID(r), rentalID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, rentalResponseFrom(rental))
		case action == "confirm" && r.Method == http.MethodPost:
			rental, err := svc.Confirm(r.Context(), tenantID(r), rentalID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, rentalResponseFrom(rental))
		case action == "cancel" && r.Method == http.MethodPost:
			rental, err := svc.Cancel(r.Context(), tenantID(r), rentalID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, rentalResponseFrom(rental))
		case action == "extend" && r.Method == http.MethodPost:
			extendRental(w, r, ext, rentalID)
		case action == "" || action == "confirm" || action == "cancel" || action == "extend":
			methodNotAllowed(w)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

type extendRequest struct {
	AdditionalDays int    `json:"additional_days"`
	PaymentType    string `json:"payment_type"`
	PaymentRef     string `json:"payment_ref"`
}

func extendRental(w http.ResponseWriter, r *http.Request, ext ExtensionRequester, rentalID string) {
	var req extendRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	res, err := ext.RequestExtension(r.Context(), app.RequestExtensionInput{
		TenantID:       tenantID(r),
		RentalID:       rentalID,
		AdditionalDays: req.AdditionalDays,
		PaymentType:    domain.PaymentType(req.PaymentType),
		PaymentRef:     req.PaymentRef,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := extensionResponse{
		Applied:   res.Applied,
		HoldID:    res.HoldID,
		Cost:      res.Cost,
		Breakdown: res.Breakdown,
		NewEnd:    formatDate(res.NewEnd),
	}
	if res.Applied {
		rental := rentalResponseFrom(res.Rental)
		resp.Rental = &rental
	}
	writeJSON(w, http.StatusOK, resp)
}

type extensionResponse struct {
	Applied   bool                  `json:"applied"`
	HoldID    string                `json:"hold_id,omitempty"`
	Cost      int64                 `json:"cost"`
	Breakdown domain.PriceBreakdown `json:"breakdown"`
	NewEnd    string                `json:"new_end_date"`
	Rental    *rentalResponse       `json:"rental,omitempty"`
}

type rentalResponse struct {
	ID          string                `json:"id"`
	BoothID     string                `json:"booth_id"`
	CustomerID  string                `json:"customer_id"`
	StartDate   string                `json:"start_date"`
	EndDate     string                `json:"end_date"`
	PriceTotal  int64                 `json:"price_total"`
	Breakdown   domain.PriceBreakdown `json:"breakdown"`
	Status      string                `json:"status"`
	PaymentType string                `json:"payment_type"`
	CreatedAt   time.Time             `json:"created_at"`
	ActivatedAt *time.Time            `json:"activated_at,omitempty"`
}

func rentalResponseFrom(rental domain.Rental) rentalResponse {
	return rentalResponse{
		ID:          rental.ID,
		BoothID:     rental.BoothID,
		CustomerID:  rental.CustomerID,
		StartDate:   formatDate(rental.Interval.Start),
		EndDate:     formatDate(rental.Interval.End),
		PriceTotal:  rental.PriceTotal,
		Breakdown:   rental.Breakdown,
		Status:      string(rental.Status),
		PaymentType: string(rental.PaymentType),
		CreatedAt:   rental.CreatedAt,
		ActivatedAt: rental.ActivatedAt,
	}
}

func parseRentalPath(path string) (rentalID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "rentals" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[1], "", true
	}
	return parts[1], parts[2], true
}
