package main

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/honari/reading-backend/internal/models"
)

type catalogue struct {
	Books []catalogueEntry `yaml:"books"`
}

type catalogueEntry struct {
	ID          string  `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title" validate:"required"`
	Author      string  `yaml:"author" json:"author"`
	Rating      float64 `yaml:"rating" json:"rating" validate:"gte=0,lte=5"`
	ImageURL    string  `yaml:"imageUrl" json:"imageUrl" validate:"omitempty,url"`
	Mood        string  `yaml:"mood" json:"mood" validate:"required"`
	Readers     int     `yaml:"readers" json:"readers" validate:"gte=0"`
	Description string  `yaml:"description" json:"description"`
	Category    *string `yaml:"category" json:"category"`
	Trend       *string `yaml:"trend" json:"trend"`
	Featured    bool    `yaml:"featured" json:"featured"`
}

type entryValidator interface {
	Validate(s any) error
}

// loadCatalogue decodes a YAML catalogue and validates every entry. Unknown
// keys are rejected so typos do not silently drop data.
func loadCatalogue(r io.Reader, v entryValidator) ([]*models.Book, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c catalogue
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalogue is empty")
		}
		return nil, fmt.Errorf("parsing catalogue: %w", err)
	}

	seen := make(map[string]int)
	books := make([]*models.Book, 0, len(c.Books))
	for i, e := range c.Books {
		if err := v.Validate(e); err != nil {
			return nil, fmt.Errorf("book %d (%q): %w", i+1, e.Title, err)
		}
		if e.ID != "" {
			if prev, dup := seen[e.ID]; dup {
				return nil, fmt.Errorf("book %d: id %q already used by book %d", i+1, e.ID, prev)
			}
			seen[e.ID] = i + 1
		}
		books = append(books, &models.Book{
			ID:          e.ID,
			Title:       e.Title,
			Author:      e.Author,
			Rating:      e.Rating,
			ImageURL:    e.ImageURL,
			Mood:        e.Mood,
			Readers:     e.Readers,
			Description: e.Description,
			Category:    e.Category,
			Trend:       e.Trend,
			Featured:    e.Featured,
		})
	}
	return books, nil
}
