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

// CartService is the surface of the hold flow the handlers need.
type CartService interface {
	CreateHold(ctx context.Context, in app.CreateHoldInput) (domain.Hold, error)
	ReleaseHold(ctx context.Context, tenantID, customerID, holdID string) error
	ListCart(ctx context.Context, tenantID, customerID string) ([]domain.Hold, error)
}

// HandleHolds serves POST /holds and GET /holds?customer_id=.
func HandleHolds(svc CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createHold(w, r, svc)
		case http.MethodGet:
			listCart(w, r, svc)
		default:
			methodNotAllowed(w)
		}
	}
}

// HandleHoldByID serves DELETE /holds/{id}?customer_id=.
func HandleHoldByID(svc CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		holdID, ok := pathTail(r.URL.Path, "holds")
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		customerID := r.URL.Query().Get("customer_id")
		if customerID == "" {
			writeError(w, http.StatusBadRequest, codeValidation, "customer_id is required")
			return
		}
		if err := svc.ReleaseHold(r.Context(), tenantID(r), customerID, holdID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type createHoldRequest struct {
	BoothID    string `json:"booth_id"`
	CustomerID string `json:"customer_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func createHold(w http.ResponseWriter, r *http.Request, svc CartService) {
	var req createHoldRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.BoothID == "" || req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "booth_id and customer_id are required")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "end_date must be YYYY-MM-DD")
		return
	}

	hold, err := svc.CreateHold(r.Context(), app.CreateHoldInput{
		TenantID:   tenantID(r),
		BoothID:    req.BoothID,
		CustomerID: req.CustomerID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, holdResponseFrom(hold))
}

func listCart(w http.ResponseWriter, r *http.Request, svc CartService) {
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "customer_id is required")
		return
	}

	holds, err := svc.ListCart(r.Context(), tenantID(r), customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]holdResponse, 0, len(holds))
	for _, h := range holds {
		out = append(out, holdResponseFrom(h))
	}
	writeJSON(w, http.StatusOK, out)
}

type holdResponse struct {
	ID         string                `json:"id"`
	BoothID    string                `json:"booth_id"`
	CustomerID string                `json:"customer_id"`
	StartDate  string                `json:"start_date"`
	EndDate    string                `json:"end_date"`
	PriceTotal int64                 `json:"price_total"`
	Breakdown  domain.PriceBreakdown `json:"breakdown"`
	ExpiresAt  time.Time             `json:"expires_at"`
}

func holdResponseFrom(h domain.Hold) holdResponse {
	return holdResponse{
		ID:         h.ID,
		BoothID:    h.BoothID,
		CustomerID: h.CustomerID,
		StartDate:  formatDate(h.Interval.Start),
		EndDate:    formatDate(h.Interval.End),
		PriceTotal: h.PriceTotal,
		Breakdown:  h.Breakdown,
		ExpiresAt:  h.ExpiresAt,
	}
}

// pathTail extracts the single path segment after the given prefix, e.g.
// /holds/{id}.
func pathTail(path, prefix string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != prefix || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
