package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGraphBaseURL = "https://graph.instagram.com"
	defaultAuthBaseURL  = "https://api.instagram.com"
	apiVersion          = "v24.0"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Overridable for tests.
	GraphBaseURL string
	AuthBaseURL  string
	HTTPClient   *http.Client
}

// Client talks to the Instagram Graph API: OAuth token exchange, profile
// lookup, and the conversation/message walk behind the historical fetch.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.GraphBaseURL == "" {
		cfg.GraphBaseURL = defaultGraphBaseURL
	}
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = defaultAuthBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

type Profile struct {
	UserID            string `json:"user_id"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// ExchangeCode trades the OAuth redirect code for a short-lived token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (TokenResponse, error) {
	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.cfg.RedirectURI},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.AuthBaseURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return TokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out TokenResponse
	if err := c.do(req, &out); err != nil {
		return TokenResponse{}, fmt.Errorf("exchange code: %w", err)
	}
	return out, nil
}

// ExchangeLongLived trades a short-lived token for a 60-day one.
func (c *Client) ExchangeLongLived(ctx context.Context, shortLived string) (TokenResponse, error) {
	q := url.Values{
		"grant_type":    {"ig_exchange_token"},
		"client_secret": {c.cfg.ClientSecret},
		"access_token":  {shortLived},
	}

	var out TokenResponse
	if err := c.get(ctx, c.cfg.GraphBaseURL+"/access_token?"+q.Encode(), &out); err != nil {
		return TokenResponse{}, fmt.Errorf("exchange long-lived token: %w", err)
	}
	return out, nil
}

// Authorize runs the full code → short-lived → long-lived exchange.
func (c *Client) Authorize(ctx context.Context, code string) (TokenResponse, error) {
	short, err := c.ExchangeCode(ctx, code)
	if err != nil {
		return TokenResponse{}, err
	}
	return c.ExchangeLongLived(ctx, short.AccessToken)
}

// Profile fetches the authenticated account.
func (c *Client) Profile(ctx context.Context, accessToken string) (Profile, error) {
	q := url.Values{
		"fields":       {"user_id,username,profile_picture_url"},
		"access_token": {accessToken},
	}

	var out Profile
	if err := c.get(ctx, c.versioned("/me")+"?"+q.Encode(), &out); err != nil {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return out, nil
}

// Username resolves an opaque user id to its public handle.
func (c *Client) Username(ctx context.Context, userID, accessToken string) (string, error) {
	q := url.Values{
		"fields":       {"username"},
		"access_token": {accessToken},
	}

	var out struct {
		Username string `json:"username"`
	}
	if err := c.get(ctx, c.versioned("/"+userID)+"?"+q.Encode(), &out); err != nil {
		return "", fmt.Errorf("resolve username for %s: %w", userID, err)
	}
	if out.Username == "" {
		return "", fmt.Errorf("no username on user %s", userID)
	}
	return out.Username, nil
}

func (c *Client) versioned(path string) string {
	return c.cfg.GraphBaseURL + "/" + apiVersion + path
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("instagram api: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
