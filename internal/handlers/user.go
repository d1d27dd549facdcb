package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/honari/reading-backend/internal/dto"
	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/middleware"
	"github.com/honari/reading-backend/internal/models"
	"github.com/honari/reading-backend/internal/response"
)

type userHandlers struct {
	ResponseHandler response.ResponseHandler
	Validator       requestValidator
	SessionSvc      SessionService
}

func NewUserHandlers(deps *Deps) *userHandlers {
	return &userHandlers{
		ResponseHandler: deps.ResponseHandler,
		Validator:       deps.Validator,
		SessionSvc:      deps.SessionSvc,
	}
}

func (h *userHandlers) UserRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.GetMe)
	r.Put("/me", h.UpdateMe)
	return r
}

func (h *userHandlers) GetMe(w http.ResponseWriter, r *http.Request) {
	sess := middleware.Session(r.Context())
	user := <-h.SessionSvc.CurrentIdentity(r.Context(), sess)
	if user == nil {
		h.ResponseHandler.HandleError(w, r, errs.NewAuthError("currentIdentity", errs.AuthUnauthenticated, "not signed in", nil))
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}

// UpdateMe replaces the caller's identity. The id is always the token uid and
// a missing createdAt keeps the stored one.
func (h *userHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decodeAndValidate(w, r, h.ResponseHandler, h.Validator, &req) {
		return
	}

	sess := middleware.Session(r.Context())
	user := &models.User{
		ID:              middleware.UID(r.Context()),
		Email:           req.Email,
		DisplayName:     req.DisplayName,
		ProfileImageURL: req.ProfileImageURL,
		FavoriteGenres:  req.FavoriteGenres,
		ReadingGoal:     req.ReadingGoal,
		CreatedAt:       req.CreatedAt,
	}
	if user.CreatedAt.IsZero() {
		if current := <-h.SessionSvc.CurrentIdentity(r.Context(), sess); current != nil {
			user.CreatedAt = current.CreatedAt
		}
	}

	updated, err := h.SessionSvc.UpdateProfile(r.Context(), sess, user)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, updated)
}
