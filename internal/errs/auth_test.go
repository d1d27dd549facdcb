package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestAsAuthErrorKeepsExisting(t *testing.T) {
	orig := NewAuthError("login", AuthInvalidCredentials, "wrong password", nil)
	wrapped := fmt.Errorf("context: %w", orig)

	got := AsAuthError("register", AuthFailed, wrapped)
	if got != orig {
		t.Fatalf("expected original AuthError to be returned, got %+v", got)
	}
}

func TestAsAuthErrorWrapsForeignError(t *testing.T) {
	cause := errors.New("deadline exceeded")
	got := AsAuthError("updateProfile", AuthStoreUnavailable, cause)

	if got.Code != AuthStoreUnavailable || got.Op != "updateProfile" {
		t.Fatalf("unexpected AuthError: %+v", got)
	}
	if !errors.Is(got, cause) {
		t.Fatalf("cause not preserved through Unwrap")
	}
	if got.Error() != "deadline exceeded" {
		t.Fatalf("message = %q", got.Error())
	}
}

func TestIsAuthCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewAuthError("login", AuthEmailExists, "exists", nil))
	if !IsAuthCode(err, AuthEmailExists) {
		t.Fatalf("expected email_exists code")
	}
	if IsAuthCode(err, AuthWeakPassword) {
		t.Fatalf("unexpected weak_password match")
	}
	if IsAuthCode(errors.New("plain"), AuthEmailExists) {
		t.Fatalf("plain error must not match")
	}
}
