package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/claimsdesk/fnol/application/service"
	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/api/jsonapi"
	"github.com/claimsdesk/fnol/internal/database"
	"github.com/claimsdesk/fnol/internal/log"
)

// APIError is an error with an explicit HTTP status.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// BadRequest creates a 400 APIError.
func BadRequest(message string, cause error) *APIError {
	return NewAPIError(http.StatusBadRequest, message, cause)
}

// Code returns the HTTP status.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the cause.
func (e *APIError) Unwrap() error { return e.cause }

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.code
	case errors.Is(err, workitem.ErrNotFound), errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict), errors.Is(err, workitem.ErrDuplicateMessage):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as a JSON:API error document. The correlation id
// of the request becomes the error id.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	status := StatusFor(err)
	detail := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		detail = apiErr.message
		if apiErr.cause != nil {
			detail = apiErr.message + ": " + apiErr.cause.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	} else {
		logger.DebugContext(r.Context(), "request rejected",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	e := jsonapi.NewError(strconv.Itoa(status), http.StatusText(status), detail)
	e.ID = log.CorrelationID(r.Context())

	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonapi.NewErrorResponse(e))
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
