package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stallworks/booth-market/internal/app"
	"github.com/stallworks/booth-market/internal/domain"
)

type stubRentalService struct {
	rental domain.Rental
	err    error
}

func (s *stubRentalService) Get(context.Context, string, string) (domain.Rental, error) {
	return s.rental, s.err
}

func (s *stubRentalService) Confirm(context.Context, string, string) (domain.Rental, error) {
	return s.rental, s.err
}

func (s *stubRentalService) Cancel(context.Context, string, string) (domain.Rental, error) {
	return s.rental, s.err
}

type stubExtensionService struct {
	result app.ExtensionResult
	err    error
}

func (s *stubExtensionService) RequestExtension(context.Context, app.RequestExtensionInput) (app.ExtensionResult, error) {
	return s.result, s.err
}

func testRental() domain.Rental {
	iv, _ := domain.NewInterval(
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	return domain.Rental{
		ID:          "rental-1",
		BoothID:     "booth-1",
		CustomerID:  "cust-1",
		Interval:    iv,
		PriceTotal:  60,
		Status:      domain.RentalStatusActive,
		PaymentType: domain.PaymentCash,
		Version:     2,
	}
}

func TestHandleRentals_Lifecycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		serviceErr     error
		expectedStatus int
	}{
		{"get", http.MethodGet, "/rentals/rental-1", nil, http.StatusOK},
		{"confirm", http.MethodPost, "/rentals/rental-1/confirm", nil, http.StatusOK},
		{"cancel", http.MethodPost, "/rentals/rental-1/cancel", nil, http.StatusOK},
		{"confirm non-draft", http.MethodPost, "/rentals/rental-1/confirm", domain.ErrRentalNotDraft, http.StatusConflict},
		{"cancel expired", http.MethodPost, "/rentals/rental-1/cancel", domain.ErrRentalExpired, http.StatusConflict},
		{"missing rental", http.MethodGet, "/rentals/rental-9", domain.ErrRentalNotFound, http.StatusNotFound},
		{"stale gives conflict", http.MethodPost, "/rentals/rental-1/confirm", domain.ErrStaleRental, http.StatusConflict},
		{"wrong method", http.MethodDelete, "/rentals/rental-1/confirm", nil, http.StatusMethodNotAllowed},
		{"unknown action", http.MethodPost, "/rentals/rental-1/destroy", nil, http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubRentalService{rental: testRental(), err: tc.serviceErr}
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set(tenantHeader, "tenant-1")
			rec := httptest.NewRecorder()

			HandleRentals(svc, &stubExtensionService{})(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleRentals_Extend(t *testing.T) {
	t.Parallel()

	t.Run("applied extension returns the rental", func(t *testing.T) {
		t.Parallel()

		rental := testRental()
		ext := &stubExtensionService{result: app.ExtensionResult{
			Applied: true,
			Rental:  rental,
			Cost:    30,
			NewEnd:  rental.Interval.End,
		}}
		body := `{"additional_days":3,"payment_type":"cash"}`
		req := httptest.NewRequest(http.MethodPost, "/rentals/rental-1/extend", strings.NewReader(body))
		req.Header.Set(tenantHeader, "tenant-1")
		rec := httptest.NewRecorder()

		HandleRentals(&stubRentalService{}, ext)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"applied":true`) || !strings.Contains(rec.Body.String(), `"id":"rental-1"`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("online extension returns the hold id", func(t *testing.T) {
		t.Parallel()

		ext := &stubExtensionService{result: app.ExtensionResult{
			Applied: false,
			HoldID:  "hold-7",
			Cost:    30,
			NewEnd:  time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		}}
		body := `{"additional_days":3,"payment_type":"online"}`
		req := httptest.NewRequest(http.MethodPost, "/rentals/rental-1/extend", strings.NewReader(body))
		req.Header.Set(tenantHeader, "tenant-1")
		rec := httptest.NewRecorder()

		HandleRentals(&stubRentalService{}, ext)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body = rec.Body.String()
		if !strings.Contains(body, `"applied":false`) || !strings.Contains(body, `"hold_id":"hold-7"`) {
			t.Fatalf("unexpected body: %s", body)
		}
	})

	t.Run("not extendable maps to conflict", func(t *testing.T) {
		t.Parallel()

		ext := &stubExtensionService{err: domain.ErrRentalNotExtendable}
		body := `{"additional_days":3,"payment_type":"cash"}`
		req := httptest.NewRequest(http.MethodPost, "/rentals/rental-1/extend", strings.NewReader(body))
		req.Header.Set(tenantHeader, "tenant-1")
		rec := httptest.NewRecorder()

		HandleRentals(&stubRentalService{}, ext)(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}
