package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dimitrije/ingressearch-api/internal/query"
	"github.com/dimitrije/ingressearch-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

// respondError writes the status matching err. fallback is the message for
// unexpected errors.
func respondError(c *drift.Context, err error, fallback string) {
	switch {
	case errors.Is(err, query.ErrInvalidQuery),
		errors.Is(err, services.ErrInvalidName),
		errors.Is(err, services.ErrInvalidDocument):
		c.BadRequest(err.Error())
	case errors.Is(err, services.ErrCollectionNotFound):
		c.NotFound("collection not found")
	case errors.Is(err, services.ErrDocumentNotFound):
		c.NotFound("document not found")
	case errors.Is(err, services.ErrSavedSearchNotFound):
		c.NotFound("saved search not found")
	case errors.Is(err, services.ErrCollectionNameTaken):
		_ = c.JSON(http.StatusConflict, map[string]string{
			"code":    "NAME_TAKEN",
			"message": "collection name already taken",
		})
	case errors.Is(err, services.ErrVersionConflict):
		_ = c.JSON(http.StatusConflict, map[string]string{
			"code":    "VERSION_CONFLICT",
			"message": "saved search has been modified by another request",
		})
	case errors.Is(err, services.ErrStoreUnavailable):
		_ = c.JSON(http.StatusServiceUnavailable, map[string]string{
			"code":    "STORE_UNAVAILABLE",
			"message": "storage backend unavailable",
		})
	case errors.Is(err, context.DeadlineExceeded):
		c.GatewayTimeout("request timed out")
	default:
		c.InternalServerError(fallback)
	}
}

func paramID(c *drift.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
