package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/pkg/logger"
)

func newTestRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := logger.ToContext(req.Context(), logger.New("debug", logger.NewTestHandler))
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandleErrorAuthCodes(t *testing.T) {
	h := New(logger.New("debug", logger.NewTestHandler))

	tests := []struct {
		code   string
		status int
	}{
		{errs.AuthInvalidInput, http.StatusBadRequest},
		{errs.AuthWeakPassword, http.StatusBadRequest},
		{errs.AuthInvalidCredentials, http.StatusUnauthorized},
		{errs.AuthInvalidToken, http.StatusUnauthorized},
		{errs.AuthUnauthenticated, http.StatusUnauthorized},
		{errs.AuthUserDisabled, http.StatusForbidden},
		{errs.AuthEmailExists, http.StatusConflict},
		{errs.AuthTooManyAttempts, http.StatusTooManyRequests},
		{errs.AuthProviderUnavailable, http.StatusServiceUnavailable},
		{errs.AuthStoreUnavailable, http.StatusServiceUnavailable},
		{errs.AuthFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rr := httptest.NewRecorder()
			err := fmt.Errorf("handler: %w", errs.NewAuthError("login", tt.code, "something went wrong", nil))
			h.HandleError(rr, newTestRequest(), err)

			assert.Equal(t, tt.status, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, "something went wrong", body.Message)
		})
	}
}

func TestHandleErrorValidationIncludesFields(t *testing.T) {
	h := New(logger.New("debug", logger.NewTestHandler))
	rr := httptest.NewRecorder()

	h.HandleError(rr, newTestRequest(), errs.NewValidationErrorWithFields("validation failed", map[string]string{"email": "is required"}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, "invalid_input", body.Code)
	assert.Equal(t, "is required", body.Fields["email"])
}

func TestHandleErrorOtherTypes(t *testing.T) {
	h := New(logger.New("debug", logger.NewTestHandler))

	var v map[string]any
	syntax := json.Unmarshal([]byte("{"), &v)
	require.Error(t, syntax)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errs.NewNotFoundError("book not found"), http.StatusNotFound, "not_found"},
		{"database", errs.NewDatabaseError("read", "failed", errors.New("boom")), http.StatusInternalServerError, "internal_error"},
		{"transient external", errs.NewExternalServiceError("identity", "down", true, nil), http.StatusServiceUnavailable, "service_unavailable"},
		{"permanent external", errs.NewExternalServiceError("identity", "bad", false, nil), http.StatusBadGateway, "service_unavailable"},
		{"malformed json", syntax, http.StatusBadRequest, "invalid_input"},
		{"empty body", io.EOF, http.StatusBadRequest, "invalid_input"},
		{"truncated body", io.ErrUnexpectedEOF, http.StatusBadRequest, "invalid_input"},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.HandleError(rr, newTestRequest(), tt.err)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
}

func TestWriteSuccessEnvelope(t *testing.T) {
	h := New(logger.New("debug", logger.NewTestHandler))
	rr := httptest.NewRecorder()

	h.WriteSuccess(rr, newTestRequest(), http.StatusCreated, map[string]string{"id": "b1"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":"b1"}}`, rr.Body.String())
}
