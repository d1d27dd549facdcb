package dto

import (
	"time"

	"github.com/honari/reading-backend/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"required,max=80"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateProfileRequest carries the full identity; the stored document is
// replaced, not merged. The id always comes from the caller's token.
type UpdateProfileRequest struct {
	Email           string    `json:"email" validate:"omitempty,email"`
	DisplayName     string    `json:"displayName" validate:"max=80"`
	ProfileImageURL *string   `json:"profileImageUrl" validate:"omitempty,url"`
	FavoriteGenres  []string  `json:"favoriteGenres" validate:"max=20,dive,required,max=40"`
	ReadingGoal     int       `json:"readingGoal" validate:"gte=0,lte=1000"`
	CreatedAt       time.Time `json:"createdAt"`
}

type SessionTokens struct {
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type AuthResponse struct {
	User    *models.User   `json:"user"`
	Session *SessionTokens `json:"session,omitempty"`
}
