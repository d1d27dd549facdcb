package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/models"
	"github.com/honari/reading-backend/pkg/logger"
)

const booksCollection = "books"

type bookStore struct {
	client *firestore.Client
}

func NewBookStore(client *firestore.Client) *bookStore {
	return &bookStore{client: client}
}

func (s *bookStore) collection() *firestore.CollectionRef {
	return s.client.Collection(booksCollection)
}

func (s *bookStore) Get(ctx context.Context, bookID string) (*models.Book, error) {
	doc, err := s.collection().Doc(bookID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("book not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get book", err)
	}
	return s.decode(ctx, doc), nil
}

// WhereEqual returns every book whose field equals value.
func (s *bookStore) WhereEqual(ctx context.Context, field string, value any) ([]*models.Book, error) {
	return s.list(ctx, s.collection().Where(field, "==", value))
}

// WhereNotNull returns every book where field is present and not null.
func (s *bookStore) WhereNotNull(ctx context.Context, field string) ([]*models.Book, error) {
	return s.list(ctx, s.collection().Where(field, "!=", nil))
}

func (s *bookStore) list(ctx context.Context, q firestore.Query) ([]*models.Book, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	books := []*models.Book{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to query books", err)
		}
		books = append(books, s.decode(ctx, doc))
	}
	return books, nil
}

func (s *bookStore) decode(ctx context.Context, doc *firestore.DocumentSnapshot) *models.Book {
	book, problems := decodeBook(doc.Ref.ID, doc.Data())
	if len(problems) > 0 {
		logger.FromContext(ctx).Warn("book document has malformed fields", "book_id", doc.Ref.ID, "problems", problems)
	}
	return book
}

// Import writes books through a BulkWriter, replacing documents that share an
// id. Books without an id get a Firestore-assigned one, which is written back
// to the book. It returns the number of documents written.
func (s *bookStore) Import(ctx context.Context, books []*models.Book) (int, error) {
	log := logger.FromContext(ctx)
	bw := s.client.BulkWriter(ctx)

	jobs := make([]*firestore.BulkWriterJob, 0, len(books))
	for _, b := range books {
		ref := s.collection().NewDoc()
		if b.ID != "" {
			ref = s.collection().Doc(b.ID)
		}
		b.ID = ref.ID

		job, err := bw.Set(ref, encodeBook(b))
		if err != nil {
			bw.End()
			return 0, errs.NewDatabaseError("write", "failed to enqueue book", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	written := 0
	var firstErr error
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			log.Warn("book import failed", "book_id", books[i].ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		written++
	}
	if firstErr != nil {
		return written, errs.NewDatabaseError("write", "failed to import books", firstErr)
	}
	return written, nil
}
