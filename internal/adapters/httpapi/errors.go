package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bornholm/go-x/slogx"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/Overland-East-Bay/membership-tracker/internal/app/memberships"
)

const (
	codeInvalidJSON          = "INVALID_JSON"
	codeIdempotencyKeyReuse  = "IDEMPOTENCY_KEY_REUSE"
	codeInternal             = "INTERNAL_ERROR"
	codeNotFound             = "NOT_FOUND"
	codeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	codeValidation           = memberships.CodeValidation
	codeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	codeRateLimited          = "RATE_LIMITED"
)

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(map[string]any(details))
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeAppError maps application errors to the error envelope; anything
// else is logged and reported as a 500 without leaking details.
func writeAppError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if ae := (*memberships.Error)(nil); errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	logger.ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slogx.Error(err))
	writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error", nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
