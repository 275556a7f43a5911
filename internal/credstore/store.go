// Package credstore keeps admin credentials between requests and restarts.
//
// Layout follows the dashboard's local storage: three string entries (access token, refresh token and
// user profile JSON). Backends only need to implement a tiny key/value Store; typed access lives in Credentials.
package credstore

import (
	"context"
)

const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Durable string key/value store
type Store interface {
	// Get value by key
	// Has to return apperrors.ErrEntryNotFound if key is not set
	Get(ctx context.Context, key string) (string, error)

	// Set value, overwriting the previous one
	Set(ctx context.Context, key string, value string) error

	// Remove every entry of the store
	// Must not fail if the store is already empty
	Clear(ctx context.Context) error
}
