package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stallworks/booth-market/internal/domain"
)

const (
	codeNotFound           = "not_found"
	codeMethodNotAllowed   = "method_not_allowed"
	codeInvalidRequestBody = "invalid_request_body"
	codeValidation         = "validation_failed"
	codeConflict           = "conflict"
	codeInvalidState       = "invalid_state"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the error taxonomy onto HTTP statuses: validation to
// 400, not-found to 404, conflicts and bad lifecycle states to 409. Stale
// errors reaching this layer mean the bounded retry gave up, so the client
// gets a 409 and may simply retry.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		validation domain.ValidationError
		notFound   domain.NotFoundError
		conflict   domain.ConflictError
		state      domain.StateError
		stale      domain.StaleError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.As(err, &state):
		writeError(w, http.StatusConflict, codeInvalidState, err.Error())
	case errors.As(err, &stale):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
