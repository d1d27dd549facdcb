package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/honari/reading-backend/internal/models"
)

// fieldReader pulls typed values out of a raw Firestore document. A missing
// field silently takes its default; a field present with the wrong type also
// takes its default and is recorded in problems.
type fieldReader struct {
	data     map[string]any
	problems []string
}

func newFieldReader(data map[string]any) *fieldReader {
	return &fieldReader{data: data}
}

func (r *fieldReader) mismatch(field, want string, got any) {
	r.problems = append(r.problems, fmt.Sprintf("%s: want %s, got %T", field, want, got))
}

func (r *fieldReader) string(field string) string {
	raw, ok := r.data[field]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		r.mismatch(field, "string", raw)
		return ""
	}
	return s
}

func (r *fieldReader) optionalString(field string) *string {
	raw, ok := r.data[field]
	if !ok || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		r.mismatch(field, "string", raw)
		return nil
	}
	return &s
}

func (r *fieldReader) int(field string) int {
	raw, ok := r.data[field]
	if !ok || raw == nil {
		return 0
	}
	switch v := raw.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		r.mismatch(field, "integer", raw)
		return 0
	}
}

func (r *fieldReader) float(field string) float64 {
	raw, ok := r.data[field]
	if !ok || raw == nil {
		return 0
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		r.mismatch(field, "number", raw)
		return 0
	}
}

func (r *fieldReader) bool(field string) bool {
	raw, ok := r.data[field]
	if !ok || raw == nil {
		return false
	}
	b, ok := raw.(bool)
	if !ok {
		r.mismatch(field, "bool", raw)
		return false
	}
	return b
}

func (r *fieldReader) strings(field string) []string {
	out := []string{}
	raw, ok := r.data[field]
	if !ok || raw == nil {
		return out
	}
	items, ok := raw.([]any)
	if !ok {
		r.mismatch(field, "array", raw)
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		} else {
			r.mismatch(field, "string element", item)
		}
	}
	return out
}

// timestamp accepts a Firestore timestamp or epoch milliseconds, the encoding
// older mobile builds wrote.
func (r *fieldReader) timestamp(field string) time.Time {
	raw, ok := r.data[field]
	if !ok || raw == nil {
		return time.Time{}
	}
	switch v := raw.(type) {
	case time.Time:
		return v
	case int64:
		return time.UnixMilli(v).UTC()
	case float64:
		return time.UnixMilli(int64(v)).UTC()
	default:
		r.mismatch(field, "timestamp", raw)
		return time.Time{}
	}
}

// decodeBook builds a Book from raw document data. The document id always
// wins over any id field stored in the body.
func decodeBook(docID string, data map[string]any) (*models.Book, []string) {
	r := newFieldReader(data)
	book := &models.Book{
		ID:          docID,
		Title:       r.string("title"),
		Author:      r.string("author"),
		Rating:      r.float("rating"),
		ImageURL:    r.string("imageUrl"),
		Mood:        r.string("mood"),
		Readers:     r.int("readers"),
		Description: r.string("description"),
		Category:    r.optionalString("category"),
		Trend:       r.optionalString("trend"),
		Featured:    r.bool("featured"),
	}
	return book, sortedProblems(r.problems)
}

// decodeUser builds a User from raw document data keyed by uid.
func decodeUser(uid string, data map[string]any) (*models.User, []string) {
	r := newFieldReader(data)
	user := &models.User{
		ID:              uid,
		Email:           r.string("email"),
		DisplayName:     r.string("displayName"),
		ProfileImageURL: r.optionalString("profileImageUrl"),
		FavoriteGenres:  r.strings("favoriteGenres"),
		ReadingGoal:     r.int("readingGoal"),
		CreatedAt:       r.timestamp("createdAt"),
	}
	if bodyID := r.string("id"); bodyID != "" && bodyID != uid {
		r.problems = append(r.problems, fmt.Sprintf("id: body %q differs from document id", bodyID))
	}
	return user, sortedProblems(r.problems)
}

func sortedProblems(p []string) []string {
	sort.Strings(p)
	return p
}

// encodeUser is the replace-semantics document written for a user.
func encodeUser(u *models.User) map[string]any {
	genres := u.FavoriteGenres
	if genres == nil {
		genres = []string{}
	}
	var image any
	if u.ProfileImageURL != nil {
		image = *u.ProfileImageURL
	}
	return map[string]any{
		"id":              u.ID,
		"email":           u.Email,
		"displayName":     u.DisplayName,
		"profileImageUrl": image,
		"favoriteGenres":  genres,
		"readingGoal":     int64(u.ReadingGoal),
		"createdAt":       u.CreatedAt,
	}
}

// encodeBook omits the id; the document id is the only source of truth.
func encodeBook(b *models.Book) map[string]any {
	var category, trend any
	if b.Category != nil {
		category = *b.Category
	}
	if b.Trend != nil {
		trend = *b.Trend
	}
	return map[string]any{
		"title":       b.Title,
		"author":      b.Author,
		"rating":      b.Rating,
		"imageUrl":    b.ImageURL,
		"mood":        b.Mood,
		"readers":     int64(b.Readers),
		"description": b.Description,
		"category":    category,
		"trend":       trend,
		"featured":    b.Featured,
	}
}
