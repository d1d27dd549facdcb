package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/honari/reading-backend/internal/dto"
	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/middleware"
	"github.com/honari/reading-backend/internal/models"
	"github.com/honari/reading-backend/internal/response"
	"github.com/honari/reading-backend/internal/session"
	"github.com/honari/reading-backend/pkg/logger"
)

type SessionService interface {
	Login(ctx context.Context, sess *session.Session, email, password string) (*models.User, error)
	Register(ctx context.Context, sess *session.Session, email, password, displayName string) (*models.User, error)
	SignInWithGoogle(ctx context.Context, sess *session.Session, idToken string) (*models.User, error)
	Logout(ctx context.Context, sess *session.Session)
	SendPasswordResetEmail(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, sess *session.Session, user *models.User) (*models.User, error)
	CurrentIdentity(ctx context.Context, sess *session.Session) <-chan *models.User
}

type authHandlers struct {
	ResponseHandler response.ResponseHandler
	Validator       requestValidator
	SessionSvc      SessionService
}

func NewAuthHandlers(deps *Deps) *authHandlers {
	return &authHandlers{
		ResponseHandler: deps.ResponseHandler,
		Validator:       deps.Validator,
		SessionSvc:      deps.SessionSvc,
	}
}

// AuthRoutes serves the credential endpoints behind limit and logout behind
// requireAuth.
func (h *authHandlers) AuthRoutes(requireAuth, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/google", h.SignInWithGoogle)
		r.Post("/password-reset", h.SendPasswordReset)
	})
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/logout", h.Logout)
	})
	return r
}

func (h *authHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, h.ResponseHandler, h.Validator, &req) {
		return
	}

	sess := session.New()
	user, err := h.SessionSvc.Login(r.Context(), sess, req.Email, req.Password)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, authResponse(sess, user))
}

func (h *authHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeAndValidate(w, r, h.ResponseHandler, h.Validator, &req) {
		return
	}

	sess := session.New()
	user, err := h.SessionSvc.Register(r.Context(), sess, req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, authResponse(sess, user))
}

func (h *authHandlers) SignInWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req dto.GoogleSignInRequest
	if !decodeAndValidate(w, r, h.ResponseHandler, h.Validator, &req) {
		return
	}

	sess := session.New()
	user, err := h.SessionSvc.SignInWithGoogle(r.Context(), sess, req.IDToken)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, authResponse(sess, user))
}

func (h *authHandlers) SendPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if !decodeAndValidate(w, r, h.ResponseHandler, h.Validator, &req) {
		return
	}

	if err := h.SessionSvc.SendPasswordResetEmail(r.Context(), req.Email); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusAccepted, nil)
}

// Logout is mounted behind FirebaseAuth so the session carries the principal
// whose refresh tokens get revoked.
func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.SessionSvc.Logout(r.Context(), middleware.Session(r.Context()))
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func authResponse(sess *session.Session, user *models.User) dto.AuthResponse {
	resp := dto.AuthResponse{User: user}
	if p, ok := sess.Principal(); ok {
		resp.Session = &dto.SessionTokens{
			IDToken:      p.IDToken,
			RefreshToken: p.RefreshToken,
			ExpiresAt:    p.ExpiresAt,
		}
	}
	return resp
}

// decodeAndValidate reports false after writing the error response.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, rh response.ResponseHandler, v requestValidator, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.FromContext(r.Context()).Debug("decode request body", "error", err)
		rh.HandleError(w, r, errs.NewValidationError("malformed request body"))
		return false
	}
	if v != nil {
		if err := v.Validate(dst); err != nil {
			rh.HandleError(w, r, err)
			return false
		}
	}
	return true
}
