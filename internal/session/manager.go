package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the per-viewer state the rest of the service consults: who is
// watching, and the token their historical fetches run under.
type Session struct {
	Username    string
	AccessToken string
}

const (
	cookieName = "gleam_session"
	sessionTTL = 60 * 24 * time.Hour // matches the long-lived token lifetime
)

var ErrNoSession = errors.New("no valid session")

type sessionClaims struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	jwt.RegisteredClaims
}

// Manager keeps session state in one signed, httpOnly cookie.
type Manager struct {
	secret []byte
	secure bool
}

func NewManager(secret string, secure bool) *Manager {
	return &Manager{secret: []byte(secret), secure: secure}
}

func (m *Manager) Issue(w http.ResponseWriter, s Session) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Username:    s.Username,
		AccessToken: s.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gleam-inbox",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) FromRequest(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, ErrNoSession
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, ErrNoSession
	}

	return Session{Username: claims.Username, AccessToken: claims.AccessToken}, nil
}
