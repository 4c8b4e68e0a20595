package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonlink/neonlink-scriptd/internal/supervisor"
)

func TestHealthEndpoints(t *testing.T) {
	ts := httptest.NewServer(Handler(NewCollector()))
	defer ts.Close()

	for _, path := range []string{"/health", "/healthz", "/ready", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err, path)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err, path)

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "ok\n", string(body), path)
	}
}

func TestMetricsScrapeDecodes(t *testing.T) {
	c := NewCollector()
	cbs := c.Callbacks()
	cbs.OnStart(supervisor.RunRecord{ScriptID: "s1"})
	cbs.OnExit(supervisor.RunRecord{ScriptID: "s1", Status: supervisor.StatusStopped}, 2*time.Second)

	ts := httptest.NewServer(Handler(c))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	decoder := expfmt.NewDecoder(resp.Body, expfmt.ResponseFormat(resp.Header))
	families := make(map[string]*dto.MetricFamily)
	for {
		var mf dto.MetricFamily
		if err := decoder.Decode(&mf); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decoding scrape: %v", err)
		}
		families[mf.GetName()] = &mf
	}

	starts, ok := families["scriptd_starts_total"]
	require.True(t, ok, "scrape missing scriptd_starts_total; got %d families", len(families))
	require.Len(t, starts.Metric, 1)
	assert.Equal(t, 1.0, starts.Metric[0].GetCounter().GetValue())

	runs, ok := families["scriptd_runs_total"]
	require.True(t, ok, "scrape missing scriptd_runs_total")
	require.Len(t, runs.Metric, 1)
	require.Len(t, runs.Metric[0].Label, 1)
	assert.Equal(t, "status", runs.Metric[0].Label[0].GetName())
	assert.Equal(t, "stopped", runs.Metric[0].Label[0].GetValue())
}

func TestUnknownPathIs404(t *testing.T) {
	ts := httptest.NewServer(Handler(NewCollector()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer("127.0.0.1:0", NewCollector(), logger)
	// Shutdown before Start must be clean: the run loop treats it as a
	// normal close.
	require.NoError(t, srv.Shutdown(t.Context()))
}
