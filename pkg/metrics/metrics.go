package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
)

const unknownKind = "other"

// Metrics holds Prometheus counters and gauges for archive runs. It is
// handed to the engine as its worker observer.
type Metrics struct {
	registry        *prometheus.Registry
	framesKept      *prometheus.CounterVec
	framesDiscarded *prometheus.CounterVec
	fetchErrors     *prometheus.CounterVec
	writeErrors     *prometheus.CounterVec
	activeWorkers   prometheus.Gauge
	fetchesInFlight prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	framesKept := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "camarchive_frames_kept_total",
		Help: "Frames written to the archive",
	}, []string{"camera"})
	framesDiscarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "camarchive_frames_discarded_total",
		Help: "Frames dropped for not differing enough from the last kept frame",
	}, []string{"camera"})
	fetchErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "camarchive_fetch_errors_total",
		Help: "Failed fetch attempts by failure kind",
	}, []string{"camera", "kind"})
	writeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "camarchive_write_errors_total",
		Help: "Kept frames which could not be written",
	}, []string{"camera"})
	activeWorkers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "camarchive_active_workers",
		Help: "Camera workers currently running",
	})
	fetchesInFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "camarchive_fetches_in_flight",
		Help: "Fetches currently holding an admission slot",
	})

	registry.MustRegister(
		framesKept,
		framesDiscarded,
		fetchErrors,
		writeErrors,
		activeWorkers,
		fetchesInFlight,
	)

	return &Metrics{
		registry:        registry,
		framesKept:      framesKept,
		framesDiscarded: framesDiscarded,
		fetchErrors:     fetchErrors,
		writeErrors:     writeErrors,
		activeWorkers:   activeWorkers,
		fetchesInFlight: fetchesInFlight,
	}
}

func (m *Metrics) WorkerStarted(string) { m.activeWorkers.Inc() }
func (m *Metrics) WorkerStopped(string) { m.activeWorkers.Dec() }
func (m *Metrics) FetchStarted(string)  { m.fetchesInFlight.Inc() }

func (m *Metrics) FetchFinished(cameraID string, err error) {
	m.fetchesInFlight.Dec()
	if err == nil {
		return
	}
	kind := unknownKind
	if k, ok := archiveerr.FetchKindOf(err); ok {
		kind = string(k)
	}
	m.fetchErrors.WithLabelValues(cameraID, kind).Inc()
}

func (m *Metrics) FrameKept(cameraID string) {
	m.framesKept.WithLabelValues(cameraID).Inc()
}

func (m *Metrics) FrameDiscarded(cameraID string) {
	m.framesDiscarded.WithLabelValues(cameraID).Inc()
}

func (m *Metrics) WriteFailed(cameraID string, _ error) {
	m.writeErrors.WithLabelValues(cameraID).Inc()
}

// Handler returns an http.Handler that serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
