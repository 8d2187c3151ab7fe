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

// BoothAdmin is the surface of the booth admin flow the handlers need.
type BoothAdmin interface {
	CreateBoothType(ctx context.Context, in app.CreateBoothTypeInput) (domain.BoothType, error)
	UpdateTiers(ctx context.Context, tenantID, boothTypeID string, tiers []domain.PricingTier) (domain.BoothType, error)
	CreateBooth(ctx context.Context, in app.CreateBoothInput) (domain.Booth, error)
	ListBooths(ctx context.Context, tenantID string) ([]domain.Booth, error)
	SetMaintenance(ctx context.Context, tenantID, boothID string, maintenance bool) error
	Status(ctx context.Context, tenantID, boothID string) (domain.BoothStatus, error)
}

// AvailabilityQuerier answers read-only availability questions.
type AvailabilityQuerier interface {
	IsAvailable(ctx context.Context, tenantID, boothID string, iv domain.Interval) (bool, error)
}

// HandleBoothTypes serves POST /booth-types and PUT /booth-types/{id}/tiers.
func HandleBoothTypes(svc BoothAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/booth-types" {
			if r.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			createBoothType(w, r, svc)
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "booth-types" || parts[1] == "" || parts[2] != "tiers" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		updateTiers(w, r, svc, parts[1])
	}
}

// HandleBooths serves POST /booths, GET /booths and the per-booth routes
// POST /booths/{id}/maintenance, GET /booths/{id}/status and
// GET /booths/{id}/availability.
func HandleBooths(svc BoothAdmin, avail AvailabilityQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/booths" {
			switch r.Method {
			case http.MethodPost:
				createBooth(w, r, svc)
			case http.MethodGet:
				listBooths(w, r, svc)
			default:
				methodNotAllowed(w)
			}
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "booths" || parts[1] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		boothID := parts[1]

		switch parts[2] {
		case "maintenance":
			if r.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			setMaintenance(w, r, svc, boothID)
		case "status":
			if r.Method != http.MethodGet {
				methodNotAllowed(w)
				return
			}
			status, err := svc.Status(r.Context(), tenantID(r), boothID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
		case "availability":
			if r.Method != http.MethodGet {
				methodNotAllowed(w)
				return
			}
			checkAvailability(w, r, avail, boothID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

type createBoothTypeRequest struct {
	Name          string               `json:"name"`
	CommissionPct float64              `json:"commission_pct"`
	Tiers         []domain.PricingTier `json:"tiers"`
}

func createBoothType(w http.ResponseWriter, r *http.Request, svc BoothAdmin) {
	var req createBoothTypeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	bt, err := svc.CreateBoothType(r.Context(), app.CreateBoothTypeInput{
		TenantID:      tenantID(r),
		Name:          req.Name,
		CommissionPct: req.CommissionPct,
		Tiers:         req.Tiers,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, boothTypeResponseFrom(bt))
}

type updateTiersRequest struct {
	Tiers []domain.PricingTier `json:"tiers"`
}

func updateTiers(w http.ResponseWriter, r *http.Request, svc BoothAdmin, boothTypeID string) {
	var req updateTiersRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	bt, err := svc.UpdateTiers(r.Context(), tenantID(r), boothTypeID, req.Tiers)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boothTypeResponseFrom(bt))
}

type createBoothRequest struct {
	BoothTypeID string `json:"booth_type_id"`
	Label       string `json:"label"`
}

func createBooth(w http.ResponseWriter, r *http.Request, svc BoothAdmin) {
	var req createBoothRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	booth, err := svc.CreateBooth(r.Context(), app.CreateBoothInput{
		TenantID:    tenantID(r),
		BoothTypeID: req.BoothTypeID,
		Label:       req.Label,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, boothResponseFrom(booth))
}

func listBooths(w http.ResponseWriter, r *http.Request, svc BoothAdmin) {
	booths, err := svc.ListBooths(r.Context(), tenantID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]boothResponse, 0, len(booths))
	for _, b := range booths {
		out = append(out, boothResponseFrom(b))
	}
	writeJSON(w, http.StatusOK, out)
}

type maintenanceRequest struct {
	Maintenance bool `json:"maintenance"`
}

func setMaintenance(w http.ResponseWriter, r *http.Request, svc BoothAdmin, boothID string) {
	var req maintenanceRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if err := svc.SetMaintenance(r.Context(), tenantID(r), boothID, req.Maintenance); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func checkAvailability(w http.ResponseWriter, r *http.Request, avail AvailabilityQuerier, boothID string) {
	q := r.URL.Query()
	start, err := parseDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "end must be YYYY-MM-DD")
		return
	}
	iv, err := domain.NewInterval(start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	available, err := avail.IsAvailable(r.Context(), tenantID(r), boothID, iv)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

type boothTypeResponse struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	CommissionPct float64              `json:"commission_pct"`
	TierVersion   int                  `json:"tier_version"`
	Tiers         []domain.PricingTier `json:"tiers"`
	CreatedAt     time.Time            `json:"created_at"`
}

func boothTypeResponseFrom(bt domain.BoothType) boothTypeResponse {
	return boothTypeResponse{
		ID:            bt.ID,
		Name:          bt.Name,
		CommissionPct: bt.CommissionPct,
		TierVersion:   bt.TierVersion,
		Tiers:         bt.Tiers,
		CreatedAt:     bt.CreatedAt,
	}
}

type boothResponse struct {
	ID          string    `json:"id"`
	BoothTypeID string    `json:"booth_type_id"`
	Label       string    `json:"label"`
	Maintenance bool      `json:"maintenance"`
	CreatedAt   time.Time `json:"created_at"`
}

func boothResponseFrom(b domain.Booth) boothResponse {
	return boothResponse{
		ID:          b.ID,
		BoothTypeID: b.BoothTypeID,
		Label:       b.Label,
		Maintenance: b.Maintenance,
		CreatedAt:   b.CreatedAt,
	}
}
