package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrEntryNotFound     = errors.New("store entry not found")
	ErrStoreUnavailable  = errors.New("credential store unavailable")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrRefreshTokenEmpty = errors.New("refresh token is empty")

	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrCategoryNotFound = errors.New("service category not found")
)

// Path the user has to be sent to when the session can't be recovered
const LoginPath = "/login"

// AuthExpiredError reports that the stored credentials were wiped because they could not be refreshed.
// It doubles as the redirect-to-login signal: callers send the user to Redirect.
type AuthExpiredError struct {
	Redirect string
	Err      error
}

func NewAuthExpired(err error) *AuthExpiredError {
	return &AuthExpiredError{Redirect: LoginPath, Err: err}
}

func (e *AuthExpiredError) Error() string {
	if e.Err == nil {
		return "auth expired"
	}
	return fmt.Sprintf("auth expired: %v", e.Err)
}

func (e *AuthExpiredError) Unwrap() error {
	return e.Err
}

// ValidationError is a 4xx answer (or a local check) carrying field-level messages
type ValidationError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}

	return fmt.Sprintf("validation failed (status %d): %s [%s]", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// Add appends message to the field errors
func (e *ValidationError) Add(field string, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// NetworkError is any other failed call: a non 2xx status or a transport failure (StatusCode == 0)
type NetworkError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("network error: %s", e.Message)
	}
	return fmt.Sprintf("network error: status %d: %s", e.StatusCode, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusCode returns http status of typed error or 0 if err has no status
func StatusCode(err error) int {
	var netErr *NetworkError
	var valErr *ValidationError

	switch {
	case errors.As(err, &valErr):
		return valErr.StatusCode
	case errors.As(err, &netErr):
		return netErr.StatusCode
	case errors.As(err, new(*AuthExpiredError)):
		return http.StatusUnauthorized
	default:
		return 0
	}
}
