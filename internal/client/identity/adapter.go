package identityclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/session"
)

const (
	googleProviderID = "google.com"
	// The Identity Toolkit only uses requestUri to build redirects; ID token
	// assertions never follow it.
	assertionRequestURI = "http://localhost"
)

// tokenAdmin is the Firebase Admin surface used for server-side token work.
type tokenAdmin interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type Adapter struct {
	rp       *identitytoolkit.RelyingpartyService
	admin    tokenAdmin
	clockNow func() time.Time
}

// NewAdapter builds the Identity Toolkit client authenticated by the web API
// key. Extra options (endpoint overrides for the emulator) are appended.
func NewAdapter(ctx context.Context, apiKey string, admin tokenAdmin, opts ...option.ClientOption) (*Adapter, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, all...)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		rp:       svc.Relyingparty,
		admin:    admin,
		clockNow: time.Now,
	}, nil
}

// EmulatorEndpoint returns the relyingparty base URL served by the Firebase
// Auth emulator listening on host.
func EmulatorEndpoint(host string) string {
	return "http://" + host + "/www.googleapis.com/identitytoolkit/v3/relyingparty/"
}

func (a *Adapter) SignInWithPassword(ctx context.Context, email, password string) (*session.Principal, error) {
	resp, err := a.rp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, toAuthError("signInWithPassword", err)
	}
	return a.principal("signInWithPassword", resp.LocalId, resp.Email, resp.DisplayName, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
}

func (a *Adapter) SignUp(ctx context.Context, email, password, displayName string) (*session.Principal, error) {
	resp, err := a.rp.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}).Context(ctx).Do()
	if err != nil {
		return nil, toAuthError("signUp", err)
	}
	return a.principal("signUp", resp.LocalId, resp.Email, resp.DisplayName, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
}

// SignInWithGoogle exchanges a Google ID token for a Firebase session.
func (a *Adapter) SignInWithGoogle(ctx context.Context, idToken string) (*session.Principal, error) {
	body := url.Values{}
	body.Set("id_token", idToken)
	body.Set("providerId", googleProviderID)

	resp, err := a.rp.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:          body.Encode(),
		RequestUri:        assertionRequestURI,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, toAuthError("signInWithGoogle", err)
	}
	if resp.ErrorMessage != "" {
		return nil, errs.NewAuthError("signInWithGoogle", errs.AuthInvalidToken, resp.ErrorMessage, nil)
	}
	name := resp.DisplayName
	if name == "" {
		name = resp.FullName
	}
	return a.principal("signInWithGoogle", resp.LocalId, resp.Email, name, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
}

func (a *Adapter) SendPasswordReset(ctx context.Context, email string) error {
	_, err := a.rp.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return toAuthError("sendPasswordReset", err)
	}
	return nil
}

// VerifyIDToken checks a Firebase ID token and returns the principal it names.
func (a *Adapter) VerifyIDToken(ctx context.Context, idToken string) (*session.Principal, error) {
	if a.admin == nil {
		return nil, errs.NewAuthError("verifyIdToken", errs.AuthProviderUnavailable, "token verification is not configured", nil)
	}
	token, err := a.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errs.NewAuthError("verifyIdToken", errs.AuthInvalidToken, "invalid or expired token", err)
	}
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	return &session.Principal{
		UID:         token.UID,
		Email:       email,
		DisplayName: name,
		IDToken:     idToken,
		ExpiresAt:   time.Unix(token.Expires, 0),
	}, nil
}

func (a *Adapter) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if a.admin == nil {
		return nil
	}
	if err := a.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return errs.NewExternalServiceError("firebase-auth", "failed to revoke refresh tokens", false, err)
	}
	return nil
}

func (a *Adapter) principal(op, uid, email, name, idToken, refreshToken string, expiresIn int64) (*session.Principal, error) {
	if uid == "" {
		return nil, errs.NewAuthError(op, errs.AuthFailed, "identity provider returned no user", nil)
	}
	return &session.Principal{
		UID:          uid,
		Email:        email,
		DisplayName:  name,
		IDToken:      idToken,
		RefreshToken: refreshToken,
		ExpiresAt:    a.clockNow().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}

// providerCodes maps Identity Toolkit error messages onto AuthError codes. The
// message is used only when the provider sends no detail text.
var providerCodes = map[string]struct {
	code    string
	message string
}{
	"EMAIL_NOT_FOUND":             {errs.AuthInvalidCredentials, "incorrect email or password"},
	"INVALID_PASSWORD":            {errs.AuthInvalidCredentials, "incorrect email or password"},
	"INVALID_LOGIN_CREDENTIALS":   {errs.AuthInvalidCredentials, "incorrect email or password"},
	"INVALID_EMAIL":               {errs.AuthInvalidInput, "the email address is badly formatted"},
	"MISSING_PASSWORD":            {errs.AuthInvalidInput, "a password is required"},
	"EMAIL_EXISTS":                {errs.AuthEmailExists, "an account already exists for this email"},
	"WEAK_PASSWORD":               {errs.AuthWeakPassword, "password should be at least 6 characters"},
	"USER_DISABLED":               {errs.AuthUserDisabled, "this account has been disabled"},
	"INVALID_IDP_RESPONSE":        {errs.AuthInvalidToken, "the sign-in token was rejected"},
	"INVALID_ID_TOKEN":            {errs.AuthInvalidToken, "the sign-in token was rejected"},
	"TOO_MANY_ATTEMPTS_TRY_LATER": {errs.AuthTooManyAttempts, "too many attempts, try again later"},
	"OPERATION_NOT_ALLOWED":       {errs.AuthFailed, "this sign-in method is disabled"},
}

func toAuthError(op string, err error) *errs.AuthError {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return errs.NewAuthError(op, errs.AuthProviderUnavailable, "identity provider unreachable", err)
	}
	if gerr.Code >= http.StatusInternalServerError {
		return errs.NewAuthError(op, errs.AuthProviderUnavailable, "identity provider unavailable", err)
	}

	// Messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
	reason, detail, _ := strings.Cut(gerr.Message, " : ")
	reason = strings.TrimSpace(reason)
	detail = strings.TrimSpace(detail)
	if mapped, ok := providerCodes[reason]; ok {
		if detail == "" {
			detail = mapped.message
		}
		return errs.NewAuthError(op, mapped.code, detail, err)
	}
	if detail == "" {
		detail = gerr.Message
	}
	return errs.NewAuthError(op, errs.AuthFailed, detail, err)
}
