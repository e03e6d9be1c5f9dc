package session

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"gleam-inbox/internal/instagram"
	"gleam-inbox/internal/user"
)

// Authorizer is the slice of the Instagram client the auth flow needs.
type Authorizer interface {
	Authorize(ctx context.Context, code string) (instagram.TokenResponse, error)
	Profile(ctx context.Context, accessToken string) (instagram.Profile, error)
}

type UserStore interface {
	Upsert(ctx context.Context, username, accessToken string) (*user.User, error)
}

// Handler runs the OAuth connect/disconnect flow.
type Handler struct {
	manager *Manager
	ig      Authorizer
	users   UserStore
}

func NewHandler(manager *Manager, ig Authorizer, users UserStore) *Handler {
	return &Handler{manager: manager, ig: ig, users: users}
}

// Callback receives the OAuth redirect, exchanges the code for a
// long-lived token, records the account, and issues the session cookie.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	token, err := h.ig.Authorize(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("token exchange failed")
		http.Error(w, "authorization failed", http.StatusBadGateway)
		return
	}

	profile, err := h.ig.Profile(r.Context(), token.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("profile fetch failed")
		http.Error(w, "authorization failed", http.StatusBadGateway)
		return
	}

	// The account row powers webhook sender resolution. Losing it is not
	// fatal to this viewer's session.
	if _, err := h.users.Upsert(r.Context(), profile.Username, token.AccessToken); err != nil {
		log.Error().Err(err).Str("username", profile.Username).Msg("account upsert failed")
	}

	if err := h.manager.Issue(w, Session{Username: profile.Username, AccessToken: token.AccessToken}); err != nil {
		log.Error().Err(err).Msg("session issue failed")
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", profile.Username).Msg("account connected")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.manager.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the connected account's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := FromContext(r.Context())
	if !ok {
		http.Error(w, "not connected", http.StatusUnauthorized)
		return
	}

	profile, err := h.ig.Profile(r.Context(), s.AccessToken)
	if err != nil {
		log.Warn().Err(err).Msg("profile fetch failed")
		http.Error(w, "profile unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
