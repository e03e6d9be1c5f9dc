package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis pub/sub channel shared by every server instance.
const eventsChannel = "gleam:events"

// Hub fans inbound message events out to every connected viewer.
//
// The clients map is only ever touched by the Run goroutine; the
// register/unregister/broadcast channels are the only way in, so the map
// needs no locking.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// nil means single-instance mode: events fan out locally only.
	redis *redis.Client
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		redis:      redisClient,
	}
}

// Run owns the client set. Call it in its own goroutine; it exits when ctx
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true
			log.Info().Str("client", client.ID).Int("clients", len(h.clients)).Msg("viewer connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Info().Str("client", client.ID).Int("clients", len(h.clients)).Msg("viewer disconnected")
			}

		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow or dead viewer: drop it, keep delivering
					// to everyone else.
					close(client.send)
					delete(h.clients, client)
					log.Warn().Str("client", client.ID).Msg("dropping unresponsive viewer")
				}
			}
		}
	}
}

// Subscribe registers a new viewer and returns its handle. The caller must
// eventually call Unsubscribe.
func (h *Hub) Subscribe() *Client {
	client := newClient(h)
	h.register <- client
	return client
}

// Unsubscribe removes a viewer. Safe to call more than once.
func (h *Hub) Unsubscribe(c *Client) {
	h.unregister <- c
}

// Broadcast serializes event and delivers it to every connected viewer.
// With Redis configured the event travels through pub/sub so every server
// instance fans it out; when Redis is absent or the publish fails it falls
// back to the local fan-out loop. Never returns an error to the caller.
func (h *Hub) Broadcast(ctx context.Context, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("marshal broadcast event")
		return
	}

	if h.redis != nil {
		err := h.redis.Publish(ctx, eventsChannel, payload).Err()
		if err == nil {
			return
		}
		log.Error().Err(err).Msg("redis publish failed, falling back to local fan-out")
	}
	h.broadcast <- payload
}

// SubscribeToRedis relays events published by any instance into the local
// fan-out loop. Blocks; run it in its own goroutine.
func (h *Hub) SubscribeToRedis(ctx context.Context) {
	if h.redis == nil {
		return
	}
	pubsub := h.redis.Subscribe(ctx, eventsChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.broadcast <- []byte(msg.Payload)
	}
}
