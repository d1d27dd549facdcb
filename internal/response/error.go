package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/pkg/logger"
)

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// authStatus maps AuthError codes to HTTP statuses. Unlisted codes are 500.
var authStatus = map[string]int{
	errs.AuthInvalidInput:        http.StatusBadRequest,
	errs.AuthWeakPassword:        http.StatusBadRequest,
	errs.AuthInvalidCredentials:  http.StatusUnauthorized,
	errs.AuthInvalidToken:        http.StatusUnauthorized,
	errs.AuthUnauthenticated:     http.StatusUnauthorized,
	errs.AuthUserDisabled:        http.StatusForbidden,
	errs.AuthEmailExists:         http.StatusConflict,
	errs.AuthTooManyAttempts:     http.StatusTooManyRequests,
	errs.AuthProviderUnavailable: http.StatusServiceUnavailable,
	errs.AuthStoreUnavailable:    http.StatusServiceUnavailable,
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeError(w, r, status, ErrorResponse{Code: code, Message: message})
}

func (h *responseHandler) writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", body.Code)
	}
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		authErr     *errs.AuthError
		notFound    *errs.NotFoundError
		validation  *errs.ValidationError
		databaseErr *errs.DatabaseError
		externalErr *errs.ExternalServiceError
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &authErr):
		status, ok := authStatus[authErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(r.Context(), level, "auth error",
			"op", authErr.Op,
			"code", authErr.Code,
			"error", err)
		h.WriteError(w, r, status, authErr.Code, authErr.Message)

	case errors.As(err, &validation):
		log.Warn("validation failed", "error", validation.Message, "fields", validation.Fields)
		h.writeError(w, r, http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_input",
			Message: validation.Message,
			Fields:  validation.Fields,
		})

	case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		log.Warn("malformed request body", "error", err)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", "malformed request body")

	case errors.As(err, &notFound):
		log.Warn("resource not found", "error", notFound.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", notFound.Message)

	case errors.As(err, &databaseErr):
		log.Error("database error",
			"operation", databaseErr.Operation,
			"error", databaseErr.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	case errors.As(err, &externalErr):
		level := slog.LevelError
		if externalErr.Transient {
			level = slog.LevelWarn
		}
		log.Log(r.Context(), level, "external service error",
			"service", externalErr.Service,
			"transient", externalErr.Transient,
			"error", externalErr.Message)

		status := http.StatusBadGateway
		if externalErr.Transient {
			status = http.StatusServiceUnavailable
		}
		h.WriteError(w, r, status, "service_unavailable",
			"Service temporarily unavailable")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}
