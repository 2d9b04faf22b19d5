package handler

import (
	"errors"
	"net/http"
	"strings"

	"transmittal/internal/domain"
	"transmittal/internal/httputil"
)

// Request headers that carry the caller's own Google credentials.
const (
	GeminiKeyHeader = "X-Gemini-API-Key"
	GoogleKeyHeader = "X-Google-API-Key"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		missing  *domain.MissingCredentialError
		conflict *domain.ConflictError
		withCode domain.HTTPError
	)

	switch {
	case errors.As(err, &missing):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, missing.Message, map[string]any{
			"credential": missing.Credential,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflict):
		httputil.RespondError(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &withCode):
		httputil.RespondError(w, withCode.StatusCode(), err.Error())
	case errors.Is(err, domain.ErrUpstream):
		httputil.RespondError(w, http.StatusBadGateway, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireUser writes a 401 and returns false when the request is anonymous.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Health answers liveness probes.
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
