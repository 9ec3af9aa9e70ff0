package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps sentinel errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "missing or invalid fields")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, common.ErrUnknownCollection):
		writeError(w, http.StatusNotFound, "unknown collection")
	case errors.Is(err, common.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, "refresh token expired")
	case errors.Is(err, common.ErrTimerNotRunning):
		writeError(w, http.StatusConflict, "timer is not running")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
