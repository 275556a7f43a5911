package credstore_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/credstore"
	"github.com/nkiryanov/behubadmin/internal/models"
)

func TestCredentials(t *testing.T) {
	t.Run("tokens roundtrip", func(t *testing.T) {
		c := credstore.NewCredentials(credstore.NewMemoryStore())

		err := c.SetTokens(t.Context(), models.TokenPair{Access: "access", Refresh: "refresh"})
		require.NoError(t, err)

		access, err := c.AccessToken(t.Context())
		require.NoError(t, err)
		require.Equal(t, "access", access)
		refresh, err := c.RefreshToken(t.Context())
		require.NoError(t, err)
		require.Equal(t, "refresh", refresh)
	})

	t.Run("empty refresh keeps previous", func(t *testing.T) {
		c := credstore.NewCredentials(credstore.NewMemoryStore())
		require.NoError(t, c.SetTokens(t.Context(), models.TokenPair{Access: "access-1", Refresh: "refresh-1"}))

		err := c.SetTokens(t.Context(), models.TokenPair{Access: "access-2"})
		require.NoError(t, err)

		access, err := c.AccessToken(t.Context())
		require.NoError(t, err)
		require.Equal(t, "access-2", access)
		refresh, err := c.RefreshToken(t.Context())
		require.NoError(t, err)
		require.Equal(t, "refresh-1", refresh, "refresh token must be kept if new one not issued")
	})

	t.Run("empty value is not found", func(t *testing.T) {
		s := credstore.NewMemoryStore()
		require.NoError(t, s.Set(t.Context(), credstore.KeyRefreshToken, ""))
		c := credstore.NewCredentials(s)

		_, err := c.RefreshToken(t.Context())

		require.ErrorIs(t, err, apperrors.ErrEntryNotFound)
	})

	t.Run("is authenticated", func(t *testing.T) {
		c := credstore.NewCredentials(credstore.NewMemoryStore())

		ok, err := c.IsAuthenticated(t.Context())
		require.NoError(t, err)
		require.False(t, ok, "empty store is not authenticated")

		require.NoError(t, c.SetTokens(t.Context(), models.TokenPair{Access: "access"}))
		ok, err = c.IsAuthenticated(t.Context())
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, c.Clear(t.Context()))
		ok, err = c.IsAuthenticated(t.Context())
		require.NoError(t, err)
		require.False(t, ok, "cleared store is not authenticated")
	})

	t.Run("user", func(t *testing.T) {
		s := credstore.NewMemoryStore()
		c := credstore.NewCredentials(s)

		_, err := c.User(t.Context())
		require.ErrorIs(t, err, apperrors.ErrEntryNotFound)

		require.NoError(t, c.SetUser(t.Context(), models.User{ID: "u1", Email: "admin@behub.test", Role: "admin"}))
		u, err := c.User(t.Context())
		require.NoError(t, err)
		require.Equal(t, "admin@behub.test", u.Email)

		require.NoError(t, s.Set(t.Context(), credstore.KeyUser, "{broken"))
		_, err = c.User(t.Context())
		require.Error(t, err, "corrupted user must not be returned")
	})
}

func TestCookies(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		w := httptest.NewRecorder()

		credstore.SetCookies(w, models.TokenPair{Access: "access", Refresh: "refresh"})

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 2)
		for _, c := range cookies {
			require.Equal(t, "/", c.Path)
			require.Equal(t, 30*24*60*60, c.MaxAge)
			require.Equal(t, http.SameSiteLaxMode, c.SameSite)
		}
		require.Equal(t, "accessToken", cookies[0].Name)
		require.Equal(t, "access", cookies[0].Value)
		require.Equal(t, "refreshToken", cookies[1].Name)
		require.Equal(t, "refresh", cookies[1].Value)
	})

	t.Run("set without refresh", func(t *testing.T) {
		w := httptest.NewRecorder()

		credstore.SetCookies(w, models.TokenPair{Access: "access"})

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1, "refresh cookie must not be touched")
		require.Equal(t, "accessToken", cookies[0].Name)
	})

	t.Run("clear", func(t *testing.T) {
		w := httptest.NewRecorder()

		credstore.ClearCookies(w)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 2)
		for _, c := range cookies {
			require.Empty(t, c.Value)
			require.Less(t, c.MaxAge, 0, "cookie must expire immediately")
		}
	})

	t.Run("access from request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		require.Empty(t, credstore.AccessFromRequest(r))

		r.AddCookie(&http.Cookie{Name: "accessToken", Value: "token"})
		require.Equal(t, "token", credstore.AccessFromRequest(r))
	})
}
