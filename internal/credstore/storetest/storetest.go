// Package storetest holds behaviour every credstore.Store backend has to pass
package storetest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/credstore"
)

// Run store contract tests. newStore must return an empty store
func Run(t *testing.T, newStore func(t *testing.T) credstore.Store) {
	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(t.Context(), credstore.KeyAccessToken)

		require.ErrorIs(t, err, apperrors.ErrEntryNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		s := newStore(t)

		err := s.Set(t.Context(), credstore.KeyAccessToken, "access-1")
		require.NoError(t, err)

		got, err := s.Get(t.Context(), credstore.KeyAccessToken)
		require.NoError(t, err)
		require.Equal(t, "access-1", got)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(t.Context(), credstore.KeyRefreshToken, "refresh-1"))

		err := s.Set(t.Context(), credstore.KeyRefreshToken, "refresh-2")
		require.NoError(t, err)

		got, err := s.Get(t.Context(), credstore.KeyRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "refresh-2", got, "last writer wins")
	})

	t.Run("clear removes everything", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(t.Context(), credstore.KeyAccessToken, "access"))
		require.NoError(t, s.Set(t.Context(), credstore.KeyRefreshToken, "refresh"))
		require.NoError(t, s.Set(t.Context(), credstore.KeyUser, `{"id":"u1"}`))

		err := s.Clear(t.Context())
		require.NoError(t, err)

		for _, key := range []string{credstore.KeyAccessToken, credstore.KeyRefreshToken, credstore.KeyUser} {
			_, err := s.Get(t.Context(), key)
			require.ErrorIs(t, err, apperrors.ErrEntryNotFound, "key %s should be removed", key)
		}
	})

	t.Run("clear empty store ok", func(t *testing.T) {
		s := newStore(t)

		err := s.Clear(t.Context())

		require.NoError(t, err)
	})
}
