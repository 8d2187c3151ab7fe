package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stallworks/booth-market/internal/domain"
)

// OnlineExtensionSettler resolves deferred online-payment extensions.
type OnlineExtensionSettler interface {
	ConfirmOnlineExtension(ctx context.Context, tenantID, holdID, paymentRef string) (domain.Rental, error)
	ReleaseOnlineExtension(ctx context.Context, tenantID, holdID string) error
}

// HandleExtensions serves POST /extensions/{holdID}/confirm and
// POST /extensions/{holdID}/release, the two payment-callback endpoints for
// the online extension path.
func HandleExtensions(svc OnlineExtensionSettler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holdID, action, ok := parseExtensionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		switch action {
		case "confirm":
			var req confirmExtensionRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			rental, err := svc.ConfirmOnlineExtension(r.Context(), tenantID(r), holdID, req.PaymentRef)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, rentalResponseFrom(rental))
		case "release":
			if err := svc.ReleaseOnlineExtension(r.Context(), tenantID(r), holdID); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

type confirmExtensionRequest struct {
	PaymentRef string `json:"payment_ref"`
}

func parseExtensionPath(path string) (holdID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "extensions" || parts[1] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
