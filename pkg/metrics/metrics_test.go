package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/camarchive/pkg/archive/process"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/metrics"
)

var _ process.Observer = (*metrics.Metrics)(nil)

func TestMetricsCountWorkerEvents(t *testing.T) {
	m := metrics.New()

	m.WorkerStarted("1")
	m.FetchStarted("1")
	m.FetchFinished("1", nil)
	m.FrameKept("1")
	m.FetchStarted("1")
	m.FetchFinished("1", archiveerr.Fetch(archiveerr.Timeout, "slow", nil))
	m.FetchStarted("1")
	m.FetchFinished("1", errors.New("plain"))
	m.FrameDiscarded("1")
	m.WriteFailed("1", errors.New("disk full"))

	expected := `
# HELP camarchive_fetch_errors_total Failed fetch attempts by failure kind
# TYPE camarchive_fetch_errors_total counter
camarchive_fetch_errors_total{camera="1",kind="other"} 1
camarchive_fetch_errors_total{camera="1",kind="timeout"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "camarchive_fetch_errors_total"))

	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "camarchive_frames_kept_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "camarchive_write_errors_total"))

	expected = `
# HELP camarchive_active_workers Camera workers currently running
# TYPE camarchive_active_workers gauge
camarchive_active_workers 1
# HELP camarchive_fetches_in_flight Fetches currently holding an admission slot
# TYPE camarchive_fetches_in_flight gauge
camarchive_fetches_in_flight 0
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"camarchive_active_workers", "camarchive_fetches_in_flight"))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := metrics.New()
	m.FrameKept("front-door")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `camarchive_frames_kept_total{camera="front-door"} 1`)
}
