// Package apiclient talks to the BeHub REST API on behalf of the logged in admin.
//
// Every request carries stored credentials. When the API answers 401 the client exchanges the refresh token
// for a new access token once and replays the request once; whatever the replay returns is final.
// If the session can't be recovered the stored credentials are wiped and *apperrors.AuthExpiredError
// is returned: the caller is expected to send the user to its Redirect.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/logger"
	"github.com/nkiryanov/behubadmin/internal/models"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderUserToken     = "x-user-token"
	HeaderRequestID     = "X-Request-ID"
)

const (
	defaultRefreshPath = "/auth/refresh"
	defaultAuthScheme  = "password_auth"
	defaultTimeout     = 30 * time.Second

	// Responses bigger than that are an API bug, not something an admin page needs
	maxResponseSize = 10 << 20
)

// Client with sensible defaults
type Config struct {
	// API base URL, like https://api.example.com/api/v1
	// Required to be set
	BaseURL string

	// Path to exchange refresh token
	// If not set than default is used
	RefreshPath string

	// Fixed literal sent as 'Authorization: Bearer <AuthScheme>'; the real token goes to x-user-token header
	// If not set than default is used
	AuthScheme string

	// Overall timeout of a single http call
	// If not set than default is used
	Timeout time.Duration

	// If not set, default transport instrumented with otelhttp is used
	Transport http.RoundTripper

	Observer Observer
	Logger   logger.Logger
}

// Store of credentials the client reads and updates
type credentials interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, pair models.TokenPair) error
	Clear(ctx context.Context) error
}

type Client struct {
	baseURL     string
	refreshPath string
	authScheme  string

	http     *http.Client
	creds    credentials
	observer Observer
	logger   logger.Logger

	// Concurrent 401s share one refresh call
	refreshGroup singleflight.Group
}

func New(cfg Config, creds credentials) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base url must not be empty")
	}
	if creds == nil {
		return nil, errors.New("credentials must not be nil")
	}

	setDefault := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefault(&cfg.RefreshPath, defaultRefreshPath)
	setDefault(&cfg.AuthScheme, defaultAuthScheme)

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Transport == nil {
		cfg.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		refreshPath: cfg.RefreshPath,
		authScheme:  cfg.AuthScheme,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		creds:    creds,
		observer: cfg.Observer,
		logger:   cfg.Logger,
	}, nil
}

// Send request and return response on any 2xx status
// On 401 refreshes credentials and replays the request once
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	a, err := newAttempt(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, a)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || a.req.Anonymous || a.retried {
		return c.result(resp)
	}

	a = a.retry()
	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("Replaying request with refreshed token", "request_id", a.requestID, "path", a.req.Path)
	c.observer.ObserveRetry()

	resp, err = c.send(ctx, a)
	if err != nil {
		return nil, err
	}

	// Final outcome, even if it is 401 again
	return c.result(resp)
}

// Do sends request and decodes JSON response body to out (if not nil)
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", req.Method, req.Path, err)
	}

	return nil
}

func (c *Client) send(ctx context.Context, a attempt) (*Response, error) {
	r, err := a.httpRequest(ctx, c.baseURL)
	if err != nil {
		return nil, err
	}

	if !a.req.Anonymous {
		if err := c.authorize(ctx, r); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	httpResp, err := c.http.Do(r)
	if err != nil {
		c.observer.ObserveRequest(a.req.Method, 0, time.Since(start))
		c.logger.Warn("Failed to send request", "request_id", a.requestID, "path", a.req.Path, "error", err)
		return nil, &apperrors.NetworkError{Message: err.Error(), Err: err}
	}
	defer httpResp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	c.observer.ObserveRequest(a.req.Method, httpResp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &apperrors.NetworkError{
			StatusCode: httpResp.StatusCode,
			Message:    fmt.Sprintf("failed to read response: %v", err),
			Err:        err,
		}
	}

	c.logger.Debug(
		"API response",
		"request_id", a.requestID,
		"method", a.req.Method,
		"path", a.req.Path,
		"status", httpResp.StatusCode,
		"retried", a.retried,
		"duration", time.Since(start),
	)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

// Attach stored access token. Without token request goes as is and the API decides
func (c *Client) authorize(ctx context.Context, r *http.Request) error {
	token, err := c.creds.AccessToken(ctx)

	switch {
	case err == nil:
		r.Header.Set(HeaderAuthorization, "Bearer "+c.authScheme)
		r.Header.Set(HeaderUserToken, token)
		return nil
	case errors.Is(err, apperrors.ErrEntryNotFound):
		return nil
	default:
		return fmt.Errorf("can't read access token. Err: %w", err)
	}
}

func (c *Client) result(resp *Response) (*Response, error) {
	if isSuccess(resp.StatusCode) {
		return resp, nil
	}
	return nil, responseError(resp)
}
