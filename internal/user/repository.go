package user

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNoAccount = errors.New("no connected account")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert records a freshly authorized account, refreshing the token and
// last_access when the username already exists.
func (r *Repository) Upsert(ctx context.Context, username, accessToken string) (*User, error) {
	u := &User{}
	query := `
		INSERT INTO users (username, access_token, last_access)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (username)
		DO UPDATE SET access_token = EXCLUDED.access_token, last_access = CURRENT_TIMESTAMP
		RETURNING id, username, access_token, last_access, date_created
	`
	err := r.db.QueryRowContext(ctx, query, username, accessToken).
		Scan(&u.ID, &u.Username, &u.AccessToken, &u.LastAccess, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// LatestAccessToken returns the token of the most recently active account.
func (r *Repository) LatestAccessToken(ctx context.Context) (string, error) {
	var token string
	query := "SELECT access_token FROM users ORDER BY last_access DESC LIMIT 1"

	err := r.db.QueryRowContext(ctx, query).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoAccount
		}
		return "", err
	}
	return token, nil
}
