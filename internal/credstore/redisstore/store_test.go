package redisstore

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/credstore"
	"github.com/nkiryanov/behubadmin/internal/credstore/storetest"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credstore.Store {
		_, client := newTestRedis(t)
		return New(client, "")
	})

	t.Run("entries live in one hash", func(t *testing.T) {
		mr, client := newTestRedis(t)
		s := New(client, "admin:creds")

		require.NoError(t, s.Set(t.Context(), credstore.KeyAccessToken, "access"))

		require.Equal(t, "access", mr.HGet("admin:creds", credstore.KeyAccessToken))
	})

	t.Run("default key", func(t *testing.T) {
		mr, client := newTestRedis(t)
		s := New(client, "")

		require.NoError(t, s.Set(t.Context(), credstore.KeyRefreshToken, "refresh"))

		require.Equal(t, "refresh", mr.HGet(DefaultKey, credstore.KeyRefreshToken))
	})

	t.Run("unavailable redis", func(t *testing.T) {
		mr, client := newTestRedis(t)
		s := New(client, "")
		mr.Close()

		_, err := s.Get(t.Context(), credstore.KeyAccessToken)

		require.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
		require.NotErrorIs(t, err, apperrors.ErrEntryNotFound, "unavailable store must not look like missing entry")
	})

	t.Run("open", func(t *testing.T) {
		mr := miniredis.RunT(t)

		s, closeFn, err := Open(t.Context(), "redis://"+mr.Addr()+"/0")
		require.NoError(t, err)
		t.Cleanup(func() { _ = closeFn() })

		require.NoError(t, s.Set(t.Context(), credstore.KeyUser, "{}"))
		got, err := s.Get(t.Context(), credstore.KeyUser)
		require.NoError(t, err)
		require.Equal(t, "{}", got)
	})

	t.Run("open invalid url", func(t *testing.T) {
		_, _, err := Open(t.Context(), "not a url")

		require.Error(t, err)
	})
}
