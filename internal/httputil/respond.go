// Package httputil provides JSON response helpers for the HTTP boundary.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/soltodo/service-layer/internal/errors"
)

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its HTTP status and writes a structured body.
// Errors without a ServiceError in their chain are reported as internal.
func WriteError(w http.ResponseWriter, err error) {
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = errors.Internal("internal server error", err)
	}

	WriteJSON(w, serviceErr.HTTPStatus, ErrorResponse{
		Status:  http.StatusText(serviceErr.HTTPStatus),
		Message: serviceErr.Message,
	})
}

// Unauthorized writes a 401 with an optional message.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "unauthorized"
	}
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
		Status:  http.StatusText(http.StatusUnauthorized),
		Message: message,
	})
}
