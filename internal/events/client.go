package events

import "github.com/google/uuid"

// Buffered per viewer so one stalled connection never blocks the fan-out.
const sendBuffer = 256

// Client is one live viewer connection attached to the hub. Transport
// handlers (SSE, websocket) drain Events until it closes.
type Client struct {
	// ID correlates log lines for one connection.
	ID string

	hub  *Hub
	send chan []byte
}

func newClient(h *Hub) *Client {
	return &Client{
		ID:   uuid.NewString(),
		hub:  h,
		send: make(chan []byte, sendBuffer),
	}
}

// Events is the outbound stream. It is closed when the hub drops the
// client, either on Unsubscribe or after a failed delivery.
func (c *Client) Events() <-chan []byte {
	return c.send
}
