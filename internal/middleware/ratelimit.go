package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/response"
	"github.com/honari/reading-backend/pkg/logger"
)

type keyedLimiter interface {
	Allow(key string) bool
}

// RateLimit rejects requests from a client IP that has exhausted its bucket
// with a too_many_attempts AuthError. trustedHops is the number of proxies in
// front of the service that append to X-Forwarded-For; zero keys on the
// connection address.
func RateLimit(limiter keyedLimiter, rh response.ResponseHandler, trustedHops int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r, trustedHops)

			if !limiter.Allow(key) {
				logger.FromContext(r.Context()).Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				rh.HandleError(w, r, errs.NewAuthError("rateLimit", errs.AuthTooManyAttempts,
					"too many attempts, please try again later", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the X-Forwarded-For entry appended by the outermost trusted
// proxy. Entries left of it are client supplied and never used.
func clientIP(r *http.Request, trustedHops int) string {
	if trustedHops > 0 {
		var hops []string
		for _, h := range r.Header.Values("X-Forwarded-For") {
			hops = append(hops, strings.Split(h, ",")...)
		}
		if len(hops) >= trustedHops {
			if ip := strings.TrimSpace(hops[len(hops)-trustedHops]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
