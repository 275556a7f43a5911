package models

import "time"

// Token pair issued by the BeHub API on login or refresh
// Refresh may be empty: the API is allowed to keep the previous refresh token alive
type TokenPair struct {
	Access  string
	Refresh string
}

// Session is derived from stored credentials, it is never stored itself
type Session struct {
	Authenticated bool
	User          *User

	// Zero when access token is opaque (not a JWT) or has no expiry
	ExpiresAt time.Time
}
