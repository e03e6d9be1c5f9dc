package user

import "time"

// User is one connected Instagram account. The access token authenticates
// server-side Graph API calls (webhook sender resolution in particular).
type User struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	AccessToken string    `json:"-"`
	LastAccess  time.Time `json:"last_access"`
	CreatedAt   time.Time `json:"date_created"`
}
