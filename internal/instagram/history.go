package instagram

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"gleam-inbox/internal/message"
)

// The Graph API renders created_time with a colon-less zone offset.
const createdTimeLayout = "2006-01-02T15:04:05-0700"

type idList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type conversationMessages struct {
	Messages idList `json:"messages"`
}

type messageDetails struct {
	ID          string `json:"id"`
	CreatedTime string `json:"created_time"`
	From        *struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"from"`
	Message string `json:"message"`
}

// AllMessages is the historical fetch: walk every conversation, pull the
// details of every message in it, and normalize into the canonical shape.
// Individual lookups that fail are skipped with a log line; only a failure
// to list conversations is returned as an error.
func (c *Client) AllMessages(ctx context.Context, accessToken string) ([]message.Message, error) {
	convIDs, err := c.conversations(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	var out []message.Message
	for _, convID := range convIDs {
		msgIDs, err := c.conversationMessages(ctx, convID, accessToken)
		if err != nil {
			log.Warn().Err(err).Str("conversation", convID).Msg("skipping conversation")
			continue
		}
		for _, msgID := range msgIDs {
			details, err := c.messageDetails(ctx, msgID, accessToken)
			if err != nil {
				log.Warn().Err(err).Str("message", msgID).Msg("skipping message")
				continue
			}
			out = append(out, toMessage(details))
		}
	}
	return out, nil
}

func (c *Client) conversations(ctx context.Context, accessToken string) ([]string, error) {
	q := url.Values{
		"platform":     {"instagram"},
		"access_token": {accessToken},
	}

	var out idList
	if err := c.get(ctx, c.versioned("/me/conversations")+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return ids(out), nil
}

func (c *Client) conversationMessages(ctx context.Context, conversationID, accessToken string) ([]string, error) {
	q := url.Values{
		"fields":       {"messages"},
		"access_token": {accessToken},
	}

	var out conversationMessages
	if err := c.get(ctx, c.versioned("/"+conversationID)+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return ids(out.Messages), nil
}

func (c *Client) messageDetails(ctx context.Context, messageID, accessToken string) (messageDetails, error) {
	q := url.Values{
		"fields":       {"id,created_time,from,to,message"},
		"access_token": {accessToken},
	}

	var out messageDetails
	if err := c.get(ctx, c.versioned("/"+messageID)+"?"+q.Encode(), &out); err != nil {
		return messageDetails{}, err
	}
	return out, nil
}

func ids(l idList) []string {
	out := make([]string, 0, len(l.Data))
	for _, d := range l.Data {
		out = append(out, d.ID)
	}
	return out
}

func toMessage(d messageDetails) message.Message {
	username := "Unknown"
	if d.From != nil && d.From.Username != "" {
		username = d.From.Username
	}

	sent, err := time.Parse(createdTimeLayout, d.CreatedTime)
	if err != nil {
		sent, err = time.Parse(time.RFC3339, d.CreatedTime)
	}
	if err != nil {
		// Unparseable times sort as the oldest possible value downstream.
		sent = time.Time{}
	}

	return message.Message{
		Username:  message.UsernamePrefix + username,
		Content:   d.Message,
		Timestamp: message.FormatTimestamp(sent),
	}
}
