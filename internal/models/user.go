package models

import (
	"time"

	"github.com/honari/reading-backend/pkg/helpers"
)

// User is the reading-tracker identity stored at users/{id}. ID always equals
// the identity provider's subject id.
type User struct {
	ID              string    `firestore:"id" json:"id"`
	Email           string    `firestore:"email" json:"email"`
	DisplayName     string    `firestore:"displayName" json:"displayName"`
	ProfileImageURL *string   `firestore:"profileImageUrl" json:"profileImageUrl"`
	FavoriteGenres  []string  `firestore:"favoriteGenres" json:"favoriteGenres"`
	ReadingGoal     int       `firestore:"readingGoal" json:"readingGoal"`
	CreatedAt       time.Time `firestore:"createdAt" json:"createdAt"`
}

// NewUser returns an identity with the documented defaults applied.
func NewUser(id, email, displayName string, createdAt time.Time) *User {
	return &User{
		ID:             id,
		Email:          email,
		DisplayName:    displayName,
		FavoriteGenres: []string{},
		CreatedAt:      createdAt,
	}
}

// Clone returns a deep copy so callers can hand the value to other goroutines.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.ProfileImageURL != nil {
		img := *u.ProfileImageURL
		c.ProfileImageURL = &img
	}
	c.FavoriteGenres = helpers.CloneSlice(u.FavoriteGenres)
	return &c
}
