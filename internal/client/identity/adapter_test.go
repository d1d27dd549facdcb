package identityclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/honari/reading-backend/internal/errs"
)

// fakeToolkit answers relyingparty calls by method suffix.
type fakeToolkit struct {
	mu       sync.Mutex
	bodies   map[string]map[string]any
	replies  map[string]string
	statuses map[string]int
}

func newFakeToolkit() *fakeToolkit {
	return &fakeToolkit{
		bodies:   map[string]map[string]any{},
		replies:  map[string]string{},
		statuses: map[string]int{},
	}
}

func (f *fakeToolkit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.bodies[method] = body
	reply, status := f.replies[method], f.statuses[method]
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, reply)
}

func (f *fakeToolkit) reply(method string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[method] = status
	f.replies[method] = body
}

func (f *fakeToolkit) body(method string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[method]
}

func providerError(message string) string {
	return `{"error":{"code":400,"message":"` + message + `","errors":[{"message":"` + message + `","domain":"global","reason":"invalid"}]}}`
}

type stubAdmin struct {
	token     *auth.Token
	verifyErr error
	revokeErr error
	revoked   []string
}

func (s *stubAdmin) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	return s.token, s.verifyErr
}

func (s *stubAdmin) RevokeRefreshTokens(_ context.Context, uid string) error {
	s.revoked = append(s.revoked, uid)
	return s.revokeErr
}

func newTestAdapter(t *testing.T, admin tokenAdmin) (*Adapter, *fakeToolkit) {
	t.Helper()
	fake := newFakeToolkit()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	a, err := NewAdapter(context.Background(), "test-key", admin, option.WithEndpoint(srv.URL+"/relyingparty/"))
	require.NoError(t, err)
	a.clockNow = func() time.Time { return time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC) }
	return a, fake
}

func TestSignInWithPassword(t *testing.T) {
	a, fake := newTestAdapter(t, nil)
	fake.reply("verifyPassword", http.StatusOK, `{"localId":"uid-1","email":"reader@example.com","displayName":"Reader","idToken":"id-tok","refreshToken":"ref-tok","expiresIn":"3600"}`)

	p, err := a.SignInWithPassword(context.Background(), "reader@example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "uid-1", p.UID)
	assert.Equal(t, "Reader", p.DisplayName)
	assert.Equal(t, "id-tok", p.IDToken)
	assert.Equal(t, "ref-tok", p.RefreshToken)
	assert.Equal(t, time.Date(2025, time.May, 1, 11, 0, 0, 0, time.UTC), p.ExpiresAt)

	body := fake.body("verifyPassword")
	assert.Equal(t, "reader@example.com", body["email"])
	assert.Equal(t, true, body["returnSecureToken"])
}

func TestSignInWithPasswordRejected(t *testing.T) {
	a, fake := newTestAdapter(t, nil)
	fake.reply("verifyPassword", http.StatusBadRequest, providerError("INVALID_PASSWORD"))

	p, err := a.SignInWithPassword(context.Background(), "reader@example.com", "wrong")
	assert.Nil(t, p)
	assert.True(t, errs.IsAuthCode(err, errs.AuthInvalidCredentials), "got %v", err)
}

func TestSignUp(t *testing.T) {
	a, fake := newTestAdapter(t, nil)
	fake.reply("signupNewUser", http.StatusOK, `{"localId":"uid-2","email":"new@example.com","displayName":"New Reader","idToken":"id-tok","refreshToken":"ref-tok","expiresIn":"3600"}`)

	p, err := a.SignUp(context.Background(), "new@example.com", "secret1", "New Reader")
	require.NoError(t, err)

	assert.Equal(t, "uid-2", p.UID)
	assert.Equal(t, "id-tok", p.IDToken)
	assert.Equal(t, "ref-tok", p.RefreshToken)
	assert.Equal(t, time.Date(2025, time.May, 1, 11, 0, 0, 0, time.UTC), p.ExpiresAt)

	body := fake.body("signupNewUser")
	assert.Equal(t, "new@example.com", body["email"])
	assert.Equal(t, "New Reader", body["displayName"])
	assert.NotContains(t, body, "returnSecureToken")
}

func TestProviderMessageKept(t *testing.T) {
	a, fake := newTestAdapter(t, nil)
	fake.reply("signupNewUser", http.StatusBadRequest, providerError("WEAK_PASSWORD : Password should be at least 6 characters"))

	_, err := a.SignUp(context.Background(), "reader@example.com", "pw", "Reader")
	var authErr *errs.AuthError
	require.True(t, errors.As(err, &authErr), "got %v", err)
	assert.Equal(t, errs.AuthWeakPassword, authErr.Code)
	assert.Equal(t, "Password should be at least 6 characters", authErr.Message)

	fake.reply("signupNewUser", http.StatusBadRequest, providerError("EMAIL_EXISTS"))
	_, err = a.SignUp(context.Background(), "reader@example.com", "secret1", "Reader")
	require.True(t, errors.As(err, &authErr), "got %v", err)
	assert.Equal(t, errs.AuthEmailExists, authErr.Code)
	assert.Equal(t, "an account already exists for this email", authErr.Message)
}

func TestSignUpErrorMapping(t *testing.T) {
	cases := map[string]string{
		"EMAIL_EXISTS": errs.AuthEmailExists,
		"WEAK_PASSWORD : Password should be at least 6 characters": errs.AuthWeakPassword,
		"SOMETHING_NEW : details here":                             errs.AuthFailed,
	}
	for message, code := range cases {
		t.Run(code, func(t *testing.T) {
			a, fake := newTestAdapter(t, nil)
			fake.reply("signupNewUser", http.StatusBadRequest, providerError(message))

			_, err := a.SignUp(context.Background(), "reader@example.com", "pw", "Reader")
			assert.True(t, errs.IsAuthCode(err, code), "message %q: got %v", message, err)
		})
	}
}

func TestSignUpServerErrorIsUnavailable(t *testing.T) {
	a, fake := newTestAdapter(t, nil)
	fake.reply("signupNewUser", http.StatusServiceUnavailable, `{"error":{"code":503,"message":"backend down"}}`)

	_, err := a.SignUp(context.Background(), "reader@example.com", "secret1", "Reader")
	assert.True(t, errs.IsAuthCode(err, errs.AuthProviderUnavailable), "got %v", err)
}

func TestSignUpWithoutUserFails(t *testing.T) {
	a, fake := newTestAdapter(t, nil)
	fake.reply("signupNewUser", http.StatusOK, `{"email":"reader@example.com"}`)

	_, err := a.SignUp(context.Background(), "reader@example.com", "secret1", "Reader")
	assert.True(t, errs.IsAuthCode(err, errs.AuthFailed), "got %v", err)
}

func TestSignInWithGoogleSendsAssertion(t *testing.T) {
	a, fake := newTestAdapter(t, nil)
	fake.reply("verifyAssertion", http.StatusOK, `{"localId":"uid-g","email":"g@example.com","fullName":"Gee Reader","idToken":"id","refreshToken":"ref","expiresIn":"3600"}`)

	p, err := a.SignInWithGoogle(context.Background(), "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-g", p.UID)
	assert.Equal(t, "Gee Reader", p.DisplayName)

	body := fake.body("verifyAssertion")
	postBody, err := url.ParseQuery(body["postBody"].(string))
	require.NoError(t, err)
	assert.Equal(t, "google-id-token", postBody.Get("id_token"))
	assert.Equal(t, "google.com", postBody.Get("providerId"))
}

func TestSignInWithGoogleErrorMessage(t *testing.T) {
	a, fake := newTestAdapter(t, nil)
	fake.reply("verifyAssertion", http.StatusOK, `{"errorMessage":"FEDERATED_USER_ID_ALREADY_LINKED"}`)

	_, err := a.SignInWithGoogle(context.Background(), "tok")
	assert.True(t, errs.IsAuthCode(err, errs.AuthInvalidToken), "got %v", err)
}

func TestSendPasswordReset(t *testing.T) {
	a, fake := newTestAdapter(t, nil)
	fake.reply("getOobConfirmationCode", http.StatusOK, `{"email":"reader@example.com"}`)

	require.NoError(t, a.SendPasswordReset(context.Background(), "reader@example.com"))
	body := fake.body("getOobConfirmationCode")
	assert.Equal(t, "PASSWORD_RESET", body["requestType"])
	assert.Equal(t, "reader@example.com", body["email"])

	fake.reply("getOobConfirmationCode", http.StatusBadRequest, providerError("EMAIL_NOT_FOUND"))
	err := a.SendPasswordReset(context.Background(), "nobody@example.com")
	assert.True(t, errs.IsAuthCode(err, errs.AuthInvalidCredentials), "got %v", err)
}

func TestUnreachableProvider(t *testing.T) {
	a, err := NewAdapter(context.Background(), "k", nil, option.WithEndpoint("http://127.0.0.1:1/relyingparty/"))
	require.NoError(t, err)

	_, err = a.SignInWithPassword(context.Background(), "reader@example.com", "secret1")
	assert.True(t, errs.IsAuthCode(err, errs.AuthProviderUnavailable), "got %v", err)
}

func TestVerifyIDToken(t *testing.T) {
	admin := &stubAdmin{token: &auth.Token{
		UID:     "uid-1",
		Expires: time.Date(2025, time.May, 1, 11, 0, 0, 0, time.UTC).Unix(),
		Claims:  map[string]interface{}{"email": "reader@example.com", "name": "Reader"},
	}}
	a, _ := newTestAdapter(t, admin)

	p, err := a.VerifyIDToken(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", p.UID)
	assert.Equal(t, "reader@example.com", p.Email)
	assert.Equal(t, "Reader", p.DisplayName)
	assert.Equal(t, "raw-token", p.IDToken)

	admin.verifyErr = errors.New("token expired")
	_, err = a.VerifyIDToken(context.Background(), "raw-token")
	assert.True(t, errs.IsAuthCode(err, errs.AuthInvalidToken), "got %v", err)
}

func TestRevokeRefreshTokens(t *testing.T) {
	admin := &stubAdmin{}
	a, _ := newTestAdapter(t, admin)

	require.NoError(t, a.RevokeRefreshTokens(context.Background(), "uid-1"))
	assert.Equal(t, []string{"uid-1"}, admin.revoked)

	admin.revokeErr = errors.New("permission denied")
	var ext *errs.ExternalServiceError
	assert.ErrorAs(t, a.RevokeRefreshTokens(context.Background(), "uid-1"), &ext)
}
