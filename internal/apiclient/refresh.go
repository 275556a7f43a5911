package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/models"
)

// Outcomes of refresh exchange reported to Observer
const (
	RefreshOK      = "ok"
	RefreshNoToken = "no_token"
	RefreshFailed  = "failed"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Success bool `json:"success"`
	Data    struct {
		PasswordToken string `json:"passwordToken"`
		RefreshToken  string `json:"refreshToken"`
	} `json:"data"`
}

// Exchange refresh token for a new access token
// Calls made at the same time share a single exchange. The exchange is detached from caller cancellation:
// a caller that gives up must not leave the others with wiped credentials
func (c *Client) refresh(ctx context.Context) error {
	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		return nil, c.exchange(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("Joined in-flight token refresh")
		}
		return res.Err
	}
}

func (c *Client) exchange(ctx context.Context) error {
	refresh, err := c.creds.RefreshToken(ctx)
	switch {
	case errors.Is(err, apperrors.ErrEntryNotFound):
		c.observer.ObserveRefresh(RefreshNoToken)
		return c.expire(ctx, apperrors.ErrRefreshTokenEmpty)
	case err != nil:
		// Store failure is not a missing token: keep credentials, caller may try again later
		return fmt.Errorf("can't read refresh token. Err: %w", err)
	}

	pair, err := c.requestRefresh(ctx, refresh)
	if err != nil {
		c.observer.ObserveRefresh(RefreshFailed)
		return c.expire(ctx, err)
	}

	if err := c.creds.SetTokens(ctx, pair); err != nil {
		return fmt.Errorf("can't save refreshed tokens. Err: %w", err)
	}

	c.observer.ObserveRefresh(RefreshOK)
	c.logger.Info("Access token refreshed", "refresh_rotated", pair.Refresh != "")

	return nil
}

func (c *Client) requestRefresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	a, err := newAttempt(Request{
		Method:    http.MethodPost,
		Path:      c.refreshPath,
		Body:      refreshRequest{RefreshToken: refresh},
		Anonymous: true,
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	resp, err := c.send(ctx, a)
	if err != nil {
		return models.TokenPair{}, err
	}
	if !isSuccess(resp.StatusCode) {
		return models.TokenPair{}, responseError(resp)
	}

	var body refreshResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if body.Data.PasswordToken == "" {
		return models.TokenPair{}, errors.New("refresh response has no access token")
	}

	return models.TokenPair{
		Access:  body.Data.PasswordToken,
		Refresh: body.Data.RefreshToken,
	}, nil
}

// Wipe credentials and build the redirect-to-login signal
func (c *Client) expire(ctx context.Context, cause error) error {
	if err := c.creds.Clear(ctx); err != nil {
		c.logger.Error("Failed to clear credentials", "error", err)
	}

	c.logger.Warn("Session expired, login required", "cause", cause)
	return apperrors.NewAuthExpired(cause)
}
