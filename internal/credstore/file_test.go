package credstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/behubadmin/internal/credstore"
	"github.com/nkiryanov/behubadmin/internal/credstore/storetest"
)

func TestFileStore(t *testing.T) {
	newStore := func(t *testing.T) *credstore.FileStore {
		s, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "nested", "credentials.json"))
		require.NoError(t, err, "file store should be created in temp dir")
		return s
	}

	storetest.Run(t, func(t *testing.T) credstore.Store {
		return newStore(t)
	})

	t.Run("survives reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		s, err := credstore.NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Set(t.Context(), credstore.KeyAccessToken, "access"))

		reopened, err := credstore.NewFileStore(path)
		require.NoError(t, err)
		got, err := reopened.Get(t.Context(), credstore.KeyAccessToken)

		require.NoError(t, err)
		require.Equal(t, "access", got)
	})

	t.Run("corrupted file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		require.NoError(t, os.WriteFile(path, []byte("not-json"), 0o600))
		s, err := credstore.NewFileStore(path)
		require.NoError(t, err)

		_, err = s.Get(t.Context(), credstore.KeyAccessToken)

		require.Error(t, err)
	})

	t.Run("empty path fails", func(t *testing.T) {
		_, err := credstore.NewFileStore("")

		require.Error(t, err)
	})
}
