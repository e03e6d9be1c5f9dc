package message

// ---------------------------------------------
// 🗄️ Canonical Message Model
// ---------------------------------------------

// UsernamePrefix is the marker every public display handle carries.
const UsernamePrefix = "@"

// Message is the canonical inbound DM, regardless of whether it arrived
// through a webhook, the historical Graph API pull, or the live stream.
type Message struct {
	Username string `json:"username"`
	Content  string `json:"content"`
	// Timestamp is rendered through FormatTimestamp so values from
	// different origins are textually comparable.
	Timestamp string `json:"timestamp"`
	// IsNew flags freshly streamed messages for the UI. Transient, never
	// persisted, not part of identity.
	IsNew bool `json:"isNew,omitempty"`
}

// Key is the identity triple used to deduplicate across sources. Two
// messages with equal keys are the same message regardless of origin.
type Key struct {
	Username  string
	Content   string
	Timestamp string
}

func (m Message) Key() Key {
	return Key{Username: m.Username, Content: m.Content, Timestamp: m.Timestamp}
}
