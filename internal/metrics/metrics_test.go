package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/behubadmin/internal/apiclient"
)

var _ apiclient.Observer = (*Metrics)(nil)

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, http.StatusUnauthorized, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodPost, 0, time.Millisecond)
	m.ObserveRefresh("ok")
	m.ObserveRetry()

	require.InDelta(t, 1, testutil.ToFloat64(m.mRequests.WithLabelValues("GET", "401")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.mRequests.WithLabelValues("GET", "200")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.mRequests.WithLabelValues("POST", "error")), 0, "transport failure has its own label")
	require.InDelta(t, 1, testutil.ToFloat64(m.mRefresh.WithLabelValues("ok")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.mRetries), 0)
	require.Equal(t, 2, testutil.CollectAndCount(m.mLatency))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRetry()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "behubadmin_api_retries_total 1")
	require.Contains(t, string(body), "go_goroutines")
}
