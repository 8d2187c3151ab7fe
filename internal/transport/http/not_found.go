package http

import "net/http"

// NotFoundHandler is the mux fallback. Unknown routes answer with the same
// error envelope the booth handlers use, naming the path so misconfigured
// clients show up clearly in logs.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no route for "+r.URL.Path)
	})
}
