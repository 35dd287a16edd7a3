package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bookreview/internal/apperror"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func JSONMessage(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, MessageResponse{Message: message})
}

func JSONError(w http.ResponseWriter, statusCode int, code string, message string, details []ErrorDetail) {
	JSON(w, statusCode, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// WriteError maps err to its status and writes the error body. Server-side
// failures are logged with their cause; the client only sees the safe message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := kind.HTTPStatus()
	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFrom(r),
			"kind", string(kind),
			"error", err,
		)
	}
	JSONError(w, status, string(kind), apperror.MessageOf(err), nil)
}

// WriteValidationError writes a 400 with per-field details.
func WriteValidationError(w http.ResponseWriter, message string, details []ErrorDetail) {
	JSONError(w, http.StatusBadRequest, string(apperror.KindValidation), message, details)
}
