package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nkiryanov/behubadmin/internal/apiclient"
	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/logger"
	"github.com/nkiryanov/behubadmin/internal/models"
)

const defaultLoginPath = "/auth/login"

type API interface {
	Do(ctx context.Context, req apiclient.Request, out any) error
}

// Credentials the service reads and writes
type Credentials interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, pair models.TokenPair) error
	User(ctx context.Context) (*models.User, error)
	SetUser(ctx context.Context, u models.User) error
	Clear(ctx context.Context) error
}

type Config struct {
	// If not set than default is used
	LoginPath string

	Logger logger.Logger
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		User          models.User `json:"user"`
		Token         string      `json:"token"`
		PasswordToken string      `json:"passwordToken"`
		RefreshToken  string      `json:"refreshToken"`
	} `json:"data"`
}

type AuthService struct {
	loginPath string

	api    API
	creds  Credentials
	logger logger.Logger
}

func NewService(cfg Config, api API, creds Credentials) (*AuthService, error) {
	if api == nil || creds == nil {
		return nil, errors.New("api and credentials must not be nil")
	}

	if cfg.LoginPath == "" {
		cfg.LoginPath = defaultLoginPath
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &AuthService{
		loginPath: cfg.LoginPath,
		api:       api,
		creds:     creds,
		logger:    cfg.Logger,
	}, nil
}

// Login with admin email and password. Previous credentials are replaced by the issued ones
func (s *AuthService) Login(ctx context.Context, email string, password string, rememberMe bool) (models.User, error) {
	var resp loginResponse

	err := s.api.Do(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      s.loginPath,
		Body:      loginRequest{Email: email, Password: password, RememberMe: rememberMe},
		Anonymous: true,
	}, &resp)

	switch {
	case err == nil:
	case apperrors.StatusCode(err) == http.StatusUnauthorized:
		return models.User{}, apperrors.ErrInvalidCredentials
	default:
		return models.User{}, err
	}

	// Older API versions send the access token as 'token' only
	access := resp.Data.PasswordToken
	if access == "" {
		access = resp.Data.Token
	}
	if access == "" {
		return models.User{}, errors.New("login response has no access token")
	}

	// Drop leftovers of the previous session, so its refresh token is never reused
	if err := s.creds.Clear(ctx); err != nil {
		return models.User{}, fmt.Errorf("can't clear previous credentials. Err: %w", err)
	}
	if err := s.creds.SetTokens(ctx, models.TokenPair{Access: access, Refresh: resp.Data.RefreshToken}); err != nil {
		return models.User{}, err
	}
	if err := s.creds.SetUser(ctx, resp.Data.User); err != nil {
		return models.User{}, err
	}

	s.logger.Info("Admin logged in", "user_id", resp.Data.User.ID, "email", resp.Data.User.Email)
	return resp.Data.User, nil
}

// Logout wipes every stored credential
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.creds.Clear(ctx); err != nil {
		return fmt.Errorf("can't clear credentials. Err: %w", err)
	}
	s.logger.Info("Admin logged out")
	return nil
}

// Session is derived from stored credentials only: no call to the API is made
func (s *AuthService) Session(ctx context.Context) (models.Session, error) {
	token, err := s.creds.AccessToken(ctx)
	switch {
	case errors.Is(err, apperrors.ErrEntryNotFound):
		return models.Session{}, nil
	case err != nil:
		return models.Session{}, err
	}

	session := models.Session{Authenticated: true, ExpiresAt: tokenExpiry(token)}

	user, err := s.creds.User(ctx)
	switch {
	case err == nil:
		session.User = user
	case errors.Is(err, apperrors.ErrEntryNotFound):
	default:
		s.logger.Warn("Failed to read stored user", "error", err)
	}

	return session, nil
}

// Stored token pair. Refresh token may be empty
func (s *AuthService) Tokens(ctx context.Context) (models.TokenPair, error) {
	access, err := s.creds.AccessToken(ctx)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.creds.RefreshToken(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrEntryNotFound) {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Expiry of JWT access token. The signature is not checked: the API does it, here it is only a hint for the UI
func tokenExpiry(token string) (expiresAt time.Time) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return expiresAt
	}
	if claims.ExpiresAt == nil {
		return expiresAt
	}
	return claims.ExpiresAt.Time
}
