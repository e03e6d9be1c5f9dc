package inbox

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"gleam-inbox/internal/message"
	"gleam-inbox/internal/session"
)

// HistoryFetcher pulls past conversation messages from the provider.
type HistoryFetcher interface {
	AllMessages(ctx context.Context, accessToken string) ([]message.Message, error)
}

type MessageStore interface {
	ListRecent(ctx context.Context, limit int) ([]message.Message, error)
}

// Handler serves the on-demand refresh: merge of historical and stored
// messages for the authenticated viewer.
type Handler struct {
	fetcher HistoryFetcher
	store   MessageStore
	limit   int
}

func NewHandler(fetcher HistoryFetcher, store MessageStore, limit int) *Handler {
	return &Handler{fetcher: fetcher, store: store, limit: limit}
}

// List degrades rather than fails: either source erroring means the viewer
// sees whatever the other one returned, never a raw upstream error.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "not connected", http.StatusUnauthorized)
		return
	}

	historical, err := h.fetcher.AllMessages(r.Context(), s.AccessToken)
	if err != nil {
		log.Warn().Err(err).Msg("historical fetch failed, serving stored messages only")
		historical = nil
	}

	stored, err := h.store.ListRecent(r.Context(), h.limit)
	if err != nil {
		log.Error().Err(err).Msg("stored message fetch failed")
		stored = nil
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Merge(historical, stored, s.Username)); err != nil {
		log.Warn().Err(err).Msg("encode merged messages")
	}
}
