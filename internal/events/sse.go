package events

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Comment frames keep intermediaries from timing out the connection.
const keepAliveInterval = 30 * time.Second

// SSEHandler streams hub events to a browser over server-sent events.
// One long-lived GET per viewer; the server writes `data:` frames for each
// broadcast and `: keep-alive` comments in between. Nothing is read back.
type SSEHandler struct {
	hub *Hub
}

func NewSSEHandler(hub *Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx would buffer otherwise

	client := h.hub.Subscribe()
	defer h.hub.Unsubscribe(client)

	if _, err := w.Write([]byte(": connected\n\n")); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case payload, open := <-client.Events():
			if !open {
				return
			}
			if err := writeFrame(w, payload); err != nil {
				log.Warn().Err(err).Str("client", client.ID).Msg("sse write failed")
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, payload []byte) error {
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err := w.Write([]byte("\n\n"))
	return err
}
