package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/models"
	"github.com/honari/reading-backend/pkg/helpers"
)

func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestBookQueriesWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := helpers.TestCtx()

	seed := map[string]map[string]any{
		"emu-featured": {"title": "Circe", "mood": "Dreamy", "featured": true, "trend": nil},
		"emu-trending": {"title": "Piranesi", "mood": "Dreamy", "featured": false, "trend": "Rising"},
		"emu-plain":    {"title": "Dune", "mood": "Epic", "featured": false, "id": "spoofed"},
	}
	for id, doc := range seed {
		if _, err := client.Collection(booksCollection).Doc(id).Set(ctx, doc); err != nil {
			t.Fatalf("seed book error: %v", err)
		}
	}

	s := NewBookStore(client)

	featured, err := s.WhereEqual(ctx, "featured", true)
	if err != nil {
		t.Fatalf("featured query error: %v", err)
	}
	for _, b := range featured {
		if !b.Featured {
			t.Fatalf("non-featured book returned: %+v", b)
		}
	}

	trending, err := s.WhereNotNull(ctx, "trend")
	if err != nil {
		t.Fatalf("trending query error: %v", err)
	}
	for _, b := range trending {
		if b.Trend == nil {
			t.Fatalf("book without trend returned: %+v", b)
		}
	}

	dreamy, err := s.WhereEqual(ctx, "mood", "Dreamy")
	if err != nil {
		t.Fatalf("mood query error: %v", err)
	}
	for _, b := range dreamy {
		if b.Mood != "Dreamy" {
			t.Fatalf("wrong mood returned: %+v", b)
		}
	}

	plain, err := s.Get(ctx, "emu-plain")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if plain.ID != "emu-plain" {
		t.Fatalf("ID = %q, want document id", plain.ID)
	}

	_, err = s.Get(ctx, "does-not-exist")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUserStoreReplaceWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := helpers.TestCtx()
	s := NewUserStore(client)

	u := models.NewUser("emu-user", "reader@example.com", "Reader", time.Now().UTC().Truncate(time.Millisecond))
	u.FavoriteGenres = []string{"Fantasy", "Poetry"}
	u.ReadingGoal = 30
	if err := s.Set(ctx, u); err != nil {
		t.Fatalf("set error: %v", err)
	}

	replacement := models.NewUser("emu-user", "reader@example.com", "Renamed", u.CreatedAt)
	if err := s.Set(ctx, replacement); err != nil {
		t.Fatalf("replace error: %v", err)
	}

	got, err := s.Get(ctx, "emu-user")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.DisplayName != "Renamed" {
		t.Fatalf("DisplayName = %q", got.DisplayName)
	}
	if len(got.FavoriteGenres) != 0 || got.ReadingGoal != 0 {
		t.Fatalf("replace must not merge old fields: %+v", got)
	}
	if !got.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, u.CreatedAt)
	}
}

func TestBookImportWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := helpers.TestCtx()
	s := NewBookStore(client)

	books := []*models.Book{
		{ID: "emu-import-1", Title: "Station Eleven", Mood: "Hopeful"},
		{Title: "The Left Hand of Darkness", Mood: "Hopeful"},
	}
	n, err := s.Import(ctx, books)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if n != 2 {
		t.Fatalf("written = %d, want 2", n)
	}
	if books[1].ID == "" {
		t.Fatalf("generated id not written back")
	}

	got, err := s.Get(ctx, books[1].ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Title != "The Left Hand of Darkness" {
		t.Fatalf("unexpected book: %+v", got)
	}
}
