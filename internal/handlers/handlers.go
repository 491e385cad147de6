// Package handlers wires the HTTP JSON surface to the services layer.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/vortexease/backoffice/internal/httpx"
	"github.com/vortexease/backoffice/internal/ids"
	"github.com/vortexease/backoffice/internal/services"
)

const dateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func queryID(r *http.Request, key string) (uint, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

// writeServiceError maps service errors onto HTTP statuses and stable codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var mf *services.MissingFieldsError
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrDuplicateApplication):
		httpx.JSONError(w, http.StatusBadRequest, "duplicate_application", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_stage_transition", nil)
	case errors.As(err, &mf):
		details := map[string]string{}
		for _, f := range mf.Fields {
			details[f] = "required"
		}
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", details)
	case errors.Is(err, services.ErrDiscountTypeRequired),
		errors.Is(err, services.ErrDiscountTypeNoAmount),
		errors.Is(err, services.ErrDiscountTooLarge),
		errors.Is(err, services.ErrDiscountExceedsSubtotal),
		errors.Is(err, services.ErrAlreadyAttached),
		errors.Is(err, services.ErrNotAttached),
		errors.Is(err, services.ErrClientMismatch),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrPassportTaken):
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// backstop for a concurrent create slipping past the service check
		httpx.JSONError(w, http.StatusBadRequest, "duplicate_value", nil)
	case errors.Is(err, ids.ErrSuffixExhausted):
		httpx.JSONError(w, http.StatusInternalServerError, "id_space_exhausted", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
