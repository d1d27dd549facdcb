package errs

import "errors"

// AuthError codes. Every failed session operation carries exactly one of them.
const (
	AuthInvalidInput        = "invalid_input"
	AuthInvalidCredentials  = "invalid_credentials"
	AuthEmailExists         = "email_exists"
	AuthWeakPassword        = "weak_password"
	AuthUserDisabled        = "user_disabled"
	AuthInvalidToken        = "invalid_token"
	AuthTooManyAttempts     = "too_many_attempts"
	AuthUnauthenticated     = "unauthenticated"
	AuthProviderUnavailable = "provider_unavailable"
	AuthStoreUnavailable    = "store_unavailable"
	AuthFailed              = "auth_failed"
)

// AuthError is the single failure type of the session layer. Message is safe
// to show to end users; Err keeps the provider or store cause.
type AuthError struct {
	ErrorMessage
	Op   string
	Code string
	Err  error
}

func (e *AuthError) Unwrap() error { return e.Err }

func NewAuthError(op, code, message string, err error) *AuthError {
	return &AuthError{
		ErrorMessage: ErrorMessage{Message: message},
		Op:           op,
		Code:         code,
		Err:          err,
	}
}

// AsAuthError returns err as an *AuthError, wrapping it with the given op and
// code when it is some other error.
func AsAuthError(op, code string, err error) *AuthError {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return NewAuthError(op, code, err.Error(), err)
}

// IsAuthCode reports whether err is an *AuthError carrying code.
func IsAuthCode(err error, code string) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Code == code
}
