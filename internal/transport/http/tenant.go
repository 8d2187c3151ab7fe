package http

import (
	"net/http"
	"time"

	"github.com/stallworks/booth-market/internal/domain"
)

const tenantHeader = "X-Tenant-ID"

// tenantID pulls the tenant from the request header. Every route below /health
// is tenant-scoped.
func tenantID(r *http.Request) string {
	return r.Header.Get(tenantHeader)
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, domain.ErrInvalidInterval
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
