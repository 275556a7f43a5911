package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/models"
)

// Credentials gives typed access to the entries kept in Store
type Credentials struct {
	store Store
}

func NewCredentials(store Store) *Credentials {
	return &Credentials{store: store}
}

// Return access token or apperrors.ErrEntryNotFound if there is no usable one
func (c *Credentials) AccessToken(ctx context.Context) (string, error) {
	return c.nonEmpty(ctx, KeyAccessToken)
}

// Return refresh token or apperrors.ErrEntryNotFound if there is no usable one
func (c *Credentials) RefreshToken(ctx context.Context) (string, error) {
	return c.nonEmpty(ctx, KeyRefreshToken)
}

// Save token pair. Empty refresh token keeps the stored one
func (c *Credentials) SetTokens(ctx context.Context, pair models.TokenPair) error {
	if err := c.store.Set(ctx, KeyAccessToken, pair.Access); err != nil {
		return fmt.Errorf("can't save access token. Err: %w", err)
	}

	if pair.Refresh == "" {
		return nil
	}

	if err := c.store.Set(ctx, KeyRefreshToken, pair.Refresh); err != nil {
		return fmt.Errorf("can't save refresh token. Err: %w", err)
	}

	return nil
}

func (c *Credentials) User(ctx context.Context) (*models.User, error) {
	raw, err := c.nonEmpty(ctx, KeyUser)
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("stored user is corrupted. Err: %w", err)
	}

	return &u, nil
}

func (c *Credentials) SetUser(ctx context.Context, u models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("can't encode user. Err: %w", err)
	}

	return c.store.Set(ctx, KeyUser, string(data))
}

// Wipe tokens and user
func (c *Credentials) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Authenticated iff non-empty access token is stored
func (c *Credentials) IsAuthenticated(ctx context.Context) (bool, error) {
	_, err := c.AccessToken(ctx)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrEntryNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (c *Credentials) nonEmpty(ctx context.Context, key string) (string, error) {
	value, err := c.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("%s is empty: %w", key, apperrors.ErrEntryNotFound)
	}

	return value, nil
}
