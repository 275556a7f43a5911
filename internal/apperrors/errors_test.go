package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors_AuthExpired(t *testing.T) {
	cause := errors.New("refresh rejected")
	err := fmt.Errorf("send failed: %w", NewAuthExpired(cause))

	var authErr *AuthExpiredError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, LoginPath, authErr.Redirect, "auth expired must carry login redirect")
	require.ErrorIs(t, err, cause, "cause should be unwrapped")
	require.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestErrors_ValidationError(t *testing.T) {
	err := &ValidationError{StatusCode: http.StatusBadRequest, Message: "Validation failed"}
	err.Add("name", "Name is required")
	err.Add("name", "Max 100 characters")
	err.Add("color", "Color must be a hex code like #ffb320")

	require.Equal(t, []string{"Name is required", "Max 100 characters"}, err.Fields["name"])
	require.Equal(t,
		"validation failed (status 400): Validation failed [color: Color must be a hex code like #ffb320; name: Name is required, Max 100 characters]",
		err.Error(),
	)
	require.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestErrors_NetworkError(t *testing.T) {
	t.Run("with status", func(t *testing.T) {
		err := &NetworkError{StatusCode: http.StatusInternalServerError, Message: "boom"}

		require.Equal(t, "network error: status 500: boom", err.Error())
		require.Equal(t, http.StatusInternalServerError, StatusCode(err))
	})

	t.Run("transport failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &NetworkError{Message: cause.Error(), Err: cause}

		require.Equal(t, "network error: connection refused", err.Error())
		require.ErrorIs(t, err, cause)
		require.Equal(t, 0, StatusCode(err))
	})

	t.Run("plain error has no status", func(t *testing.T) {
		require.Equal(t, 0, StatusCode(ErrCategoryNotFound))
	})
}
