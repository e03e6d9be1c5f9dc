package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"gleam-inbox/internal/message"
)

// SenderResolver turns the provider's opaque sender id into a public
// username.
type SenderResolver interface {
	ResolveSender(ctx context.Context, senderID string) (string, error)
}

type MessageStore interface {
	Save(ctx context.Context, m message.Message) error
}

type Broadcaster interface {
	Broadcast(ctx context.Context, event any)
}

// Handler receives Meta messaging webhooks: the GET verify handshake and
// the POST event delivery.
type Handler struct {
	verifyToken string
	resolver    SenderResolver
	store       MessageStore
	hub         Broadcaster
}

func NewHandler(verifyToken string, resolver SenderResolver, store MessageStore, hub Broadcaster) *Handler {
	return &Handler{
		verifyToken: verifyToken,
		resolver:    resolver,
		store:       store,
		hub:         hub,
	}
}

// payload mirrors the provider's nested delivery shape. Only the first
// messaging event of the first entry is consumed.
type payload struct {
	Object string  `json:"object"`
	Entry  []entry `json:"entry"`
}

type entry struct {
	Messaging []messagingEvent `json:"messaging"`
}

// messagingEvent is the raw event before sender resolution. It lives for
// one request only and is never persisted in this form.
type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Timestamp int64 `json:"timestamp"`
	Message   struct {
		Text string `json:"text"`
	} `json:"message"`
}

// Verify answers the GET handshake: echo hub.challenge when the token
// matches, 403 otherwise.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.Write([]byte(challenge))
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// Receive ingests a POST delivery. The provider retries any non-200
// response forever, so whatever happens below this handler acknowledges
// with an empty 200 body.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	var body payload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Warn().Err(err).Msg("webhook: undecodable body")
		return
	}

	event, ok := firstMessagingEvent(body)
	if !ok || event.Message.Text == "" {
		log.Debug().Msg("webhook: no text message in payload")
		return
	}

	username, err := h.resolver.ResolveSender(r.Context(), event.Sender.ID)
	if err != nil {
		log.Warn().Err(err).Str("sender_id", event.Sender.ID).Msg("webhook: sender resolution failed")
		return
	}

	msg := message.Message{
		Username:  message.UsernamePrefix + username,
		Content:   event.Message.Text,
		Timestamp: message.FormatTimestamp(time.UnixMilli(event.Timestamp)),
		IsNew:     true,
	}

	// Persist and broadcast are independent best-effort steps: a failure
	// in one never blocks the other.
	if err := h.store.Save(r.Context(), msg); err != nil {
		log.Error().Err(err).Msg("webhook: persist failed")
	}
	h.hub.Broadcast(r.Context(), msg)

	log.Info().Str("username", msg.Username).Msg("webhook: message received")
}

func firstMessagingEvent(p payload) (messagingEvent, bool) {
	if len(p.Entry) == 0 || len(p.Entry[0].Messaging) == 0 {
		return messagingEvent{}, false
	}
	return p.Entry[0].Messaging[0], true
}
