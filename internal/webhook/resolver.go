package webhook

import (
	"context"
	"fmt"
)

// UsernameLookup is the Graph API call behind sender resolution.
type UsernameLookup interface {
	Username(ctx context.Context, userID, accessToken string) (string, error)
}

// TokenSource yields a usable access token. Webhooks carry no session, so
// the resolver authenticates with the most recently connected account.
type TokenSource interface {
	LatestAccessToken(ctx context.Context) (string, error)
}

type GraphResolver struct {
	ig     UsernameLookup
	tokens TokenSource
}

func NewGraphResolver(ig UsernameLookup, tokens TokenSource) *GraphResolver {
	return &GraphResolver{ig: ig, tokens: tokens}
}

func (g *GraphResolver) ResolveSender(ctx context.Context, senderID string) (string, error) {
	token, err := g.tokens.LatestAccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("no access token for sender lookup: %w", err)
	}
	return g.ig.Username(ctx, senderID, token)
}
