package services

import (
	"context"
	"errors"

	"github.com/honari/reading-backend/internal/dto"
	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/models"
	"github.com/honari/reading-backend/pkg/logger"
)

type bookCSStore interface {
	Get(ctx context.Context, bookID string) (*models.Book, error)
	WhereEqual(ctx context.Context, field string, value any) ([]*models.Book, error)
	WhereNotNull(ctx context.Context, field string) ([]*models.Book, error)
}

type catalogService struct {
	store  bookCSStore
	policy dto.CatalogErrorPolicy
}

func NewCatalogService(store bookCSStore, policy dto.CatalogErrorPolicy) *catalogService {
	if policy == "" {
		policy = dto.CatalogDegrade
	}
	return &catalogService{store: store, policy: policy}
}

func (s *catalogService) FeaturedBooks(ctx context.Context) <-chan dto.BookSnapshot {
	return s.snapshot(ctx, "featured", func(ctx context.Context) ([]*models.Book, error) {
		return s.store.WhereEqual(ctx, "featured", true)
	})
}

func (s *catalogService) TrendingBooks(ctx context.Context) <-chan dto.BookSnapshot {
	return s.snapshot(ctx, "trending", func(ctx context.Context) ([]*models.Book, error) {
		return s.store.WhereNotNull(ctx, "trend")
	})
}

func (s *catalogService) BooksByMood(ctx context.Context, mood string) <-chan dto.BookSnapshot {
	return s.snapshot(ctx, "mood", func(ctx context.Context) ([]*models.Book, error) {
		return s.store.WhereEqual(ctx, "mood", mood)
	})
}

// SearchBooks is not backed by any index yet and always yields an empty list.
func (s *catalogService) SearchBooks(ctx context.Context, query string) <-chan dto.BookSnapshot {
	return s.snapshot(ctx, "search", func(context.Context) ([]*models.Book, error) {
		return []*models.Book{}, nil
	})
}

// BookByID returns nil both when the book is absent and when the lookup fails.
func (s *catalogService) BookByID(ctx context.Context, bookID string) *models.Book {
	if bookID == "" {
		return nil
	}
	book, err := s.store.Get(ctx, bookID)
	if err != nil {
		log := logger.FromContext(ctx)
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			log.Debug("book not found", "book_id", bookID)
		} else {
			log.Warn("book lookup failed", "book_id", bookID, "error", err)
		}
		return nil
	}
	return book
}

// snapshot runs query on its own goroutine and yields exactly one snapshot.
// The channel is buffered so an abandoned receiver never blocks the query.
func (s *catalogService) snapshot(ctx context.Context, op string, query func(context.Context) ([]*models.Book, error)) <-chan dto.BookSnapshot {
	out := make(chan dto.BookSnapshot, 1)
	go func() {
		defer close(out)
		books, err := query(ctx)
		out <- s.settle(ctx, op, books, err)
	}()
	return out
}

// settle is the one place deciding what a failed list query yields.
func (s *catalogService) settle(ctx context.Context, op string, books []*models.Book, err error) dto.BookSnapshot {
	if err == nil {
		if books == nil {
			books = []*models.Book{}
		}
		return dto.BookSnapshot{Books: books}
	}

	logger.FromContext(ctx).Warn("catalog query failed", "query", op, "policy", string(s.policy), "error", err)
	if s.policy == dto.CatalogPropagate {
		return dto.BookSnapshot{Books: []*models.Book{}, Err: err}
	}
	return dto.BookSnapshot{Books: []*models.Book{}}
}
