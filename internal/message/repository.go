package message

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Repository is the durable store for webhook-received messages.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save appends one message. The stored sender_username column carries the
// handle without its prefix; ListRecent restores it.
func (r *Repository) Save(ctx context.Context, m Message) error {
	sent, err := ParseTimestamp(m.Timestamp)
	if err != nil {
		return fmt.Errorf("unstorable timestamp %q: %w", m.Timestamp, err)
	}

	query := "INSERT INTO messages (sender_username, content, date) VALUES ($1, $2, $3)"
	_, err = r.db.ExecContext(ctx, query, strings.TrimPrefix(m.Username, UsernamePrefix), m.Content, sent)
	return err
}

// ListRecent returns the newest stored messages, most recent first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Message, error) {
	query := `
		SELECT sender_username, content, date
		FROM messages
		ORDER BY date DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			username string
			content  string
			sent     sql.NullTime
		)
		if err := rows.Scan(&username, &content, &sent); err != nil {
			return nil, err
		}
		messages = append(messages, Message{
			Username:  UsernamePrefix + username,
			Content:   content,
			Timestamp: FormatTimestamp(sent.Time),
		})
	}
	return messages, rows.Err()
}
