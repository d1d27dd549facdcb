package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/models"
	"github.com/honari/reading-backend/internal/session"
	"github.com/honari/reading-backend/pkg/logger"
)

// identityProvider is the Firebase Auth surface the session manager needs.
type identityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*session.Principal, error)
	SignUp(ctx context.Context, email, password, displayName string) (*session.Principal, error)
	SignInWithGoogle(ctx context.Context, idToken string) (*session.Principal, error)
	SendPasswordReset(ctx context.Context, email string) error
	VerifyIDToken(ctx context.Context, idToken string) (*session.Principal, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type userSSStore interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	Set(ctx context.Context, user *models.User) error
}

type sessionService struct {
	idp      identityProvider
	users    userSSStore
	clockNow func() time.Time
}

func NewSessionService(idp identityProvider, users userSSStore) *sessionService {
	return &sessionService{
		idp:      idp,
		users:    users,
		clockNow: time.Now,
	}
}

func (s *sessionService) Login(ctx context.Context, sess *session.Session, email, password string) (*models.User, error) {
	const op = "login"
	log := logger.FromContext(ctx)

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errs.NewAuthError(op, errs.AuthInvalidInput, "email and password are required", nil)
	}

	p, err := s.idp.SignInWithPassword(ctx, email, password)
	if err != nil {
		ae := errs.AsAuthError(op, errs.AuthFailed, err)
		log.Warn("login rejected", "code", ae.Code, "error", err)
		return nil, ae
	}

	user, err := s.loadIdentity(ctx, p)
	if err != nil {
		log.Error("failed to load identity after login", "uid", p.UID, "error", err)
		return nil, errs.NewAuthError(op, errs.AuthStoreUnavailable, "could not load your profile", err)
	}

	sess.SignIn(*p, user)
	log.Info("user logged in", "uid", p.UID)
	return user.Clone(), nil
}

func (s *sessionService) Register(ctx context.Context, sess *session.Session, email, password, displayName string) (*models.User, error) {
	const op = "register"
	log := logger.FromContext(ctx)

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errs.NewAuthError(op, errs.AuthInvalidInput, "email and password are required", nil)
	}

	p, err := s.idp.SignUp(ctx, email, password, displayName)
	if err != nil {
		ae := errs.AsAuthError(op, errs.AuthFailed, err)
		log.Warn("registration rejected", "code", ae.Code, "error", err)
		return nil, ae
	}

	// The supplied email is stored, not the provider's echo of it.
	user := models.NewUser(p.UID, email, displayName, s.clockNow())
	if err := s.users.Set(ctx, user); err != nil {
		log.Error("provider account created but identity write failed", "uid", p.UID, "error", err)
		return nil, errs.NewAuthError(op, errs.AuthStoreUnavailable, "could not save your profile", err)
	}

	sess.SignIn(*p, user)
	log.Info("user registered", "uid", p.UID)
	log.Debug("user registered with full details", "user", user)
	return user.Clone(), nil
}

// SignInWithGoogle overwrites the stored identity with the provider's email
// and display name on every federated sign-in.
func (s *sessionService) SignInWithGoogle(ctx context.Context, sess *session.Session, idToken string) (*models.User, error) {
	const op = "signInWithGoogle"
	log := logger.FromContext(ctx)

	if strings.TrimSpace(idToken) == "" {
		return nil, errs.NewAuthError(op, errs.AuthInvalidInput, "an ID token is required", nil)
	}

	p, err := s.idp.SignInWithGoogle(ctx, idToken)
	if err != nil {
		ae := errs.AsAuthError(op, errs.AuthFailed, err)
		log.Warn("google sign-in rejected", "code", ae.Code, "error", err)
		return nil, ae
	}

	user := models.NewUser(p.UID, p.Email, p.DisplayName, s.clockNow())
	if err := s.users.Set(ctx, user); err != nil {
		log.Error("failed to upsert identity after google sign-in", "uid", p.UID, "error", err)
		return nil, errs.NewAuthError(op, errs.AuthStoreUnavailable, "could not save your profile", err)
	}

	sess.SignIn(*p, user)
	log.Info("user signed in with google", "uid", p.UID)
	return user.Clone(), nil
}

// Logout always succeeds. Revoking provider refresh tokens is best effort and
// the stored identity is left in place.
func (s *sessionService) Logout(ctx context.Context, sess *session.Session) {
	log := logger.FromContext(ctx)

	p, ok := sess.SignOut()
	if !ok {
		return
	}
	if err := s.idp.RevokeRefreshTokens(ctx, p.UID); err != nil {
		log.Warn("refresh token revocation failed", "uid", p.UID, "error", err)
	}
	log.Info("user logged out", "uid", p.UID)
}

func (s *sessionService) SendPasswordResetEmail(ctx context.Context, email string) error {
	const op = "sendPasswordResetEmail"

	if strings.TrimSpace(email) == "" {
		return errs.NewAuthError(op, errs.AuthInvalidInput, "email is required", nil)
	}
	if err := s.idp.SendPasswordReset(ctx, email); err != nil {
		ae := errs.AsAuthError(op, errs.AuthFailed, err)
		logger.FromContext(ctx).Warn("password reset failed", "code", ae.Code, "error", err)
		return ae
	}
	return nil
}

// UpdateProfile replaces users/{user.ID} with user.
func (s *sessionService) UpdateProfile(ctx context.Context, sess *session.Session, user *models.User) (*models.User, error) {
	const op = "updateProfile"
	log := logger.FromContext(ctx)

	if user == nil || user.ID == "" {
		return nil, errs.NewAuthError(op, errs.AuthInvalidInput, "profile id is required", nil)
	}

	updated := user.Clone()
	if updated.FavoriteGenres == nil {
		updated.FavoriteGenres = []string{}
	}
	if err := s.users.Set(ctx, updated); err != nil {
		log.Error("failed to update profile", "uid", user.ID, "error", err)
		return nil, errs.NewAuthError(op, errs.AuthStoreUnavailable, "could not save your profile", err)
	}

	if sess != nil {
		sess.SetIdentity(updated)
	}
	log.Info("profile updated", "uid", user.ID)
	return updated.Clone(), nil
}

// CurrentIdentity emits exactly one value per call: the signed-in identity,
// a provider-derived default when none is stored or the read fails, or nil
// when the session has no principal.
func (s *sessionService) CurrentIdentity(ctx context.Context, sess *session.Session) <-chan *models.User {
	out := make(chan *models.User, 1)

	go func() {
		defer close(out)

		p, ok := sess.Principal()
		if !ok {
			out <- nil
			return
		}

		user, err := s.loadIdentity(ctx, &p)
		if err != nil {
			logger.FromContext(ctx).Warn("identity read failed, using provider profile", "uid", p.UID, "error", err)
			user = s.defaultIdentity(&p)
		}
		out <- user
	}()

	return out
}

// Restore seeds sess from a Firebase ID token presented by a returning client.
func (s *sessionService) Restore(ctx context.Context, sess *session.Session, idToken string) error {
	const op = "restore"

	if strings.TrimSpace(idToken) == "" {
		return errs.NewAuthError(op, errs.AuthUnauthenticated, "missing token", nil)
	}
	p, err := s.idp.VerifyIDToken(ctx, idToken)
	if err != nil {
		return errs.AsAuthError(op, errs.AuthInvalidToken, err)
	}
	sess.Restore(*p)
	return nil
}

// loadIdentity reads the stored identity, synthesizing one from the provider
// profile when no document exists.
func (s *sessionService) loadIdentity(ctx context.Context, p *session.Principal) (*models.User, error) {
	user, err := s.users.Get(ctx, p.UID)
	if err == nil {
		return user, nil
	}
	var nf *errs.NotFoundError
	if errors.As(err, &nf) {
		logger.FromContext(ctx).Debug("no stored identity, using provider profile", "uid", p.UID)
		return s.defaultIdentity(p), nil
	}
	return nil, err
}

func (s *sessionService) defaultIdentity(p *session.Principal) *models.User {
	return models.NewUser(p.UID, p.Email, p.DisplayName, s.clockNow())
}
