package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gleam-inbox/internal/instagram"
	"gleam-inbox/internal/user"
)

func requestWithCookies(rec *httptest.ResponseRecorder, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	m := NewManager("test-secret", false)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, Session{Username: "carol", AccessToken: "tok"}))

	got, err := m.FromRequest(requestWithCookies(rec, "/api/messages"))
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Username)
	assert.Equal(t, "tok", got.AccessToken)
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	issuer := NewManager("secret-a", false)
	verifier := NewManager("secret-b", false)

	rec := httptest.NewRecorder()
	require.NoError(t, issuer.Issue(rec, Session{Username: "carol", AccessToken: "tok"}))

	_, err := verifier.FromRequest(requestWithCookies(rec, "/"))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMiddleware(t *testing.T) {
	m := NewManager("test-secret", false)

	var seen Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	})

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid cookie", func(t *testing.T) {
		issued := httptest.NewRecorder()
		require.NoError(t, m.Issue(issued, Session{Username: "carol", AccessToken: "tok"}))

		rec := httptest.NewRecorder()
		m.Middleware(next).ServeHTTP(rec, requestWithCookies(issued, "/"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "carol", seen.Username)
	})
}

type fakeAuthorizer struct {
	token    instagram.TokenResponse
	tokenErr error
	profile  instagram.Profile
}

func (f *fakeAuthorizer) Authorize(context.Context, string) (instagram.TokenResponse, error) {
	return f.token, f.tokenErr
}

func (f *fakeAuthorizer) Profile(context.Context, string) (instagram.Profile, error) {
	return f.profile, nil
}

type fakeUserStore struct {
	upserted []string
	err      error
}

func (f *fakeUserStore) Upsert(_ context.Context, username, _ string) (*user.User, error) {
	f.upserted = append(f.upserted, username)
	return &user.User{Username: username}, f.err
}

func TestCallback(t *testing.T) {
	t.Run("missing code", func(t *testing.T) {
		h := NewHandler(NewManager("s", false), &fakeAuthorizer{}, &fakeUserStore{})
		rec := httptest.NewRecorder()
		h.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewHandler(NewManager("s", false), &fakeAuthorizer{tokenErr: errors.New("denied")}, &fakeUserStore{})
		rec := httptest.NewRecorder()
		h.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("connects account and issues session", func(t *testing.T) {
		m := NewManager("s", false)
		users := &fakeUserStore{}
		h := NewHandler(m, &fakeAuthorizer{
			token:   instagram.TokenResponse{AccessToken: "long-lived"},
			profile: instagram.Profile{Username: "carol"},
		}, users)

		rec := httptest.NewRecorder()
		h.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, []string{"carol"}, users.upserted)

		s, err := m.FromRequest(requestWithCookies(rec, "/"))
		require.NoError(t, err)
		assert.Equal(t, "carol", s.Username)
		assert.Equal(t, "long-lived", s.AccessToken)
	})

	t.Run("upsert failure still issues session", func(t *testing.T) {
		m := NewManager("s", false)
		h := NewHandler(m, &fakeAuthorizer{
			token:   instagram.TokenResponse{AccessToken: "long-lived"},
			profile: instagram.Profile{Username: "carol"},
		}, &fakeUserStore{err: errors.New("db down")})

		rec := httptest.NewRecorder()
		h.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		_, err := m.FromRequest(requestWithCookies(rec, "/"))
		assert.NoError(t, err)
	})
}
