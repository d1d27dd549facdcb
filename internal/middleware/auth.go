package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/response"
	"github.com/honari/reading-backend/internal/session"
	"github.com/honari/reading-backend/pkg/logger"
)

type sessionRestorer interface {
	Restore(ctx context.Context, sess *session.Session, idToken string) error
}

type Middleware struct {
	Sessions        sessionRestorer
	ResponseHandler response.ResponseHandler
}

func NewMiddleware(sessions sessionRestorer, rh response.ResponseHandler) *Middleware {
	return &Middleware{Sessions: sessions, ResponseHandler: rh}
}

type contextKey string

const (
	UIDKey     contextKey = "uid"
	SessionKey contextKey = "session"
)

// FirebaseAuth verifies the bearer ID token and attaches a request-scoped
// session restored from it.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "authenticate"

		header := r.Header.Get("Authorization")
		if header == "" {
			m.ResponseHandler.HandleError(w, r, errs.NewAuthError(op, errs.AuthUnauthenticated, "missing Authorization header", nil))
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.ResponseHandler.HandleError(w, r, errs.NewAuthError(op, errs.AuthUnauthenticated, "invalid Authorization header", nil))
			return
		}

		sess := session.New()
		if err := m.Sessions.Restore(r.Context(), sess, parts[1]); err != nil {
			m.ResponseHandler.HandleError(w, r, err)
			return
		}

		p, _ := sess.Principal()
		_, ctx := logger.With(r.Context(), "uid", p.UID)
		ctx = context.WithValue(ctx, UIDKey, p.UID)
		ctx = WithSession(ctx, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

// Session returns the request's session, or a fresh signed-out one on
// routes that are not behind FirebaseAuth.
func Session(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(SessionKey).(*session.Session); ok {
		return sess
	}
	return session.New()
}

func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}
