package ports

import "context"

// AuthService authenticates the admin operator against the configured
// credentials and issues a session token for the admin API.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
}
