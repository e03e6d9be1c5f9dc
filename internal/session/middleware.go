package session

import (
	"context"
	"net/http"
)

type contextKey string

const sessionKey contextKey = "session"

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// Middleware rejects requests without a valid session cookie and injects
// the session into the request context for everyone else.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.FromRequest(r)
		if err != nil {
			http.Error(w, "not connected", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}
