package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// StatusFor maps a sync error to an HTTP status.
//
//	unknown table          404
//	deadline exceeded      504
//	source fetch failure   502
//	configuration missing  500
//	sink write failure     500
//	anything else          500
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrSourceFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
