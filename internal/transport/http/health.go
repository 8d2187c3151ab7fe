package http

import (
	stdhttp "net/http"
)

// HealthHandler answers liveness checks with the same JSON shape the rest of
// the API speaks. It is the one route exempt from the tenant header, so load
// balancers can hit it without credentials.
func HealthHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	writeJSON(w, stdhttp.StatusOK, map[string]string{"status": "ok"})
}
