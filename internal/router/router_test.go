package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/handlers"
	"github.com/honari/reading-backend/internal/middleware"
	"github.com/honari/reading-backend/internal/response"
	"github.com/honari/reading-backend/internal/session"
	"github.com/honari/reading-backend/pkg/logger"
)

type rejectAll struct{}

func (rejectAll) Restore(context.Context, *session.Session, string) error {
	return errs.NewAuthError("restore", errs.AuthInvalidToken, "invalid or expired token", nil)
}

func newTestRouter(limited bool) http.Handler {
	log := logger.New("debug", logger.NewTestHandler)
	rh := response.New(log)
	deps := &handlers.Deps{Log: log, ResponseHandler: rh}

	opts := Options{
		Auth:        middleware.NewMiddleware(rejectAll{}, rh),
		CORSOrigins: []string{"https://app.example.com"},
	}
	if limited {
		opts.AuthLimiter = func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			})
		}
	}
	return NewRouter(deps, opts)
}

func TestHealthz(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(false).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newTestRouter(false)
	for _, path := range []string{"/users/me", "/books/featured", "/books/b1", "/discover"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCredentialRoutesAreRateLimited(t *testing.T) {
	h := newTestRouter(true)
	for _, path := range []string{"/auth/login", "/auth/register", "/auth/google", "/auth/password-reset"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusTooManyRequests, rr.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/books/featured", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rr := httptest.NewRecorder()
	newTestRouter(false).ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
