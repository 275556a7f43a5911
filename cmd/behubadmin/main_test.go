package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/behubadmin/internal/testutil"
)

func Test_run(t *testing.T) {
	backend := testutil.NewFakeBehub(t)

	port, err := testutil.RandomPort()
	require.NoError(t, err, "failed to get random port to start server")
	listenAddr := fmt.Sprintf("localhost:%d", port)

	noEnv := func(string) string { return "" }
	getwd := func() (string, error) { return t.TempDir(), nil }

	t.Run("stop with signal", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err := run(ctx, noEnv, getwd, []string{
			"--address", listenAddr,
			"--log-level", "debug",
			"--api", backend.URL(),
			"--store", "memory:",
		})

		require.NoError(t, err, "on correct stop should not return error")
	})

	t.Run("stop with config error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		// Unknown store, must fail before server started
		err := run(ctx, noEnv, getwd, []string{
			"--address", listenAddr,
			"--api", backend.URL(),
			"--store", "mongodb://localhost",
		})

		require.Error(t, err, "on incorrect config should return error")
	})

	t.Run("stop with srv error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err := run(ctx, noEnv, getwd, []string{
			"--address", "not-an-address",
			"--api", backend.URL(),
		})

		require.Error(t, err, "listen error should be returned")
	})

	t.Run("env is read", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err := run(ctx, func(key string) string {
			if key == "ENVIRONMENT" {
				return "staging"
			}
			return ""
		}, getwd, []string{"--address", listenAddr, "--api", backend.URL()})

		require.ErrorContains(t, err, "unknown environment")
	})
}
