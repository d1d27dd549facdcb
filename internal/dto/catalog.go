package dto

import (
	"github.com/honari/reading-backend/internal/models"
)

// BookSnapshot is the single value produced by a catalog list query. Err is
// only ever set under the propagate error policy.
type BookSnapshot struct {
	Books []*models.Book
	Err   error
}

// CatalogErrorPolicy decides what a failed list query yields.
type CatalogErrorPolicy string

const (
	// CatalogDegrade turns failures into an empty list.
	CatalogDegrade CatalogErrorPolicy = "degrade"
	// CatalogPropagate hands the failure to the caller in BookSnapshot.Err.
	CatalogPropagate CatalogErrorPolicy = "propagate"
)

// DiscoverResponse is the discover screen payload; each list is fetched independently.
type DiscoverResponse struct {
	Featured []*models.Book `json:"featured"`
	Trending []*models.Book `json:"trending"`
	Mood     string         `json:"mood,omitempty"`
	ByMood   []*models.Book `json:"byMood,omitempty"`
}
