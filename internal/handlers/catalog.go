package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/honari/reading-backend/internal/dto"
	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/models"
	"github.com/honari/reading-backend/internal/response"
)

type CatalogService interface {
	FeaturedBooks(ctx context.Context) <-chan dto.BookSnapshot
	TrendingBooks(ctx context.Context) <-chan dto.BookSnapshot
	BooksByMood(ctx context.Context, mood string) <-chan dto.BookSnapshot
	SearchBooks(ctx context.Context, query string) <-chan dto.BookSnapshot
	BookByID(ctx context.Context, bookID string) *models.Book
}

type catalogHandlers struct {
	ResponseHandler response.ResponseHandler
	CatalogSvc      CatalogService
}

func NewCatalogHandlers(deps *Deps) *catalogHandlers {
	return &catalogHandlers{
		ResponseHandler: deps.ResponseHandler,
		CatalogSvc:      deps.CatalogSvc,
	}
}

func (h *catalogHandlers) BookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.BooksByMood)
	r.Get("/featured", h.FeaturedBooks) // must be before /{bookId}
	r.Get("/trending", h.TrendingBooks)
	r.Get("/search", h.SearchBooks)
	r.Get("/{bookId}", h.BookByID)
	return r
}

func (h *catalogHandlers) FeaturedBooks(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r, h.CatalogSvc.FeaturedBooks(r.Context()))
}

func (h *catalogHandlers) TrendingBooks(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r, h.CatalogSvc.TrendingBooks(r.Context()))
}

func (h *catalogHandlers) BooksByMood(w http.ResponseWriter, r *http.Request) {
	mood := strings.TrimSpace(r.URL.Query().Get("mood"))
	if mood == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationErrorWithFields("validation failed",
			map[string]string{"mood": "is required"}))
		return
	}
	h.writeSnapshot(w, r, h.CatalogSvc.BooksByMood(r.Context(), mood))
}

func (h *catalogHandlers) SearchBooks(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r, h.CatalogSvc.SearchBooks(r.Context(), r.URL.Query().Get("q")))
}

func (h *catalogHandlers) BookByID(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")
	book := h.CatalogSvc.BookByID(r.Context(), bookID)
	if book == nil {
		h.ResponseHandler.HandleError(w, r, errs.NewNotFoundError("book not found"))
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, book)
}

// Discover loads the discover screen. Each list fills only its own field, so
// one slow or failed query never blocks the others from being reported.
func (h *catalogHandlers) Discover(w http.ResponseWriter, r *http.Request) {
	mood := strings.TrimSpace(r.URL.Query().Get("mood"))
	resp := dto.DiscoverResponse{Mood: mood}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return collect(ctx, h.CatalogSvc.FeaturedBooks(ctx), &resp.Featured)
	})
	g.Go(func() error {
		return collect(ctx, h.CatalogSvc.TrendingBooks(ctx), &resp.Trending)
	})
	if mood != "" {
		g.Go(func() error {
			return collect(ctx, h.CatalogSvc.BooksByMood(ctx, mood), &resp.ByMood)
		})
	}

	if err := g.Wait(); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func collect(ctx context.Context, ch <-chan dto.BookSnapshot, dst *[]*models.Book) error {
	select {
	case snap := <-ch:
		if snap.Err != nil {
			return snap.Err
		}
		*dst = snap.Books
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *catalogHandlers) writeSnapshot(w http.ResponseWriter, r *http.Request, ch <-chan dto.BookSnapshot) {
	var books []*models.Book
	if err := collect(r.Context(), ch, &books); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, books)
}
