package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/honari/reading-backend/internal/handlers"
	"github.com/honari/reading-backend/internal/middleware"
)

type Options struct {
	Auth        *middleware.Middleware
	AuthLimiter func(http.Handler) http.Handler
	CORSOrigins []string
}

func NewRouter(deps *handlers.Deps, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ah := handlers.NewAuthHandlers(deps)
	uh := handlers.NewUserHandlers(deps)
	ch := handlers.NewCatalogHandlers(deps)

	limit := opts.AuthLimiter
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	r.Mount("/auth", ah.AuthRoutes(opts.Auth.FirebaseAuth, limit))

	r.Group(func(r chi.Router) {
		r.Use(opts.Auth.FirebaseAuth)
		r.Mount("/users", uh.UserRoutes())
		r.Mount("/books", ch.BookRoutes())
		r.Get("/discover", ch.Discover)
	})

	return r
}
