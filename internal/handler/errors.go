package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gbsb/tripmate/internal/domain"
)

// ErrorDetail is the payload of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope of every error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// kinds maps each domain error category to its HTTP status and the code used
// when the error carries no code of its own.
var kinds = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
	{domain.ErrIntegrity, http.StatusInternalServerError, "INTEGRITY_VIOLATION"},
	{domain.ErrUnavailable, http.StatusBadGateway, "UNAVAILABLE"},
}

// writeServiceError maps err to a status and error body. Errors outside the
// domain categories are logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range kinds {
		if !errors.Is(err, k.err) {
			continue
		}
		if k.status >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "request failed", "error", err)
		}
		var de *domain.Error
		if errors.As(err, &de) {
			writeError(w, k.status, de.Code, de.Message)
			return
		}
		writeError(w, k.status, k.code, unwrapMessage(err, k.err))
		return
	}

	slog.ErrorContext(r.Context(), "unhandled error", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

// unwrapMessage extracts the human-readable part after the category sentinel.
// e.g. "service.MeetingService.Update: validation error: member_max is below..." → "member_max is below..."
func unwrapMessage(err, kind error) string {
	msg := err.Error()
	prefix := kind.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
