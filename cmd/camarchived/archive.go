package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tauraamui/camarchive/pkg/archive"
	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/camarchive/pkg/configdef"
	data "github.com/tauraamui/camarchive/pkg/database"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/camarchive/pkg/metrics"
	"github.com/tauraamui/camarchive/pkg/video/videodecode"
	"github.com/tauraamui/camarchive/pkg/video/videodecode/opencvdecode"
	"github.com/tauraamui/camarchive/pkg/video/videosource"
	"github.com/tauraamui/xerror"
)

const shutdownTimeout = 5 * time.Second

// signalContext is cancelled on the first SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func archiveRecords(ctx context.Context, values configdef.Values, records []camera.Record, out io.Writer) error {
	opts := []archive.Option{
		archive.WithBackend(videosource.Resolve(values.SourceBackend)),
		archive.WithDecoder(videodecode.DefaultChain().With(opencvdecode.New())),
	}

	if len(values.MetricsAddress) > 0 {
		m := metrics.New()
		opts = append(opts, archive.WithObserver(m))
		srv := serveMetrics(values.MetricsAddress, m)
		defer shutdownMetrics(srv)
	}

	outcome, err := archive.NewEngine(opts...).Run(ctx, records, values.RunConfig())
	if err != nil {
		return err
	}

	if err := printSummary(out, outcome); err != nil {
		return xerror.Errorf("unable to print run summary: %w", err)
	}

	if values.Ledger.Enabled {
		if err := saveToLedger(outcome); err != nil {
			return err
		}
	}

	if outcome.Cancelled() {
		log.Warn("Run %s was interrupted before its duration elapsed", outcome.RunID) //nolint
	}
	return nil
}

func saveToLedger(outcome archive.Outcome) error {
	db, err := data.Connect()
	if err != nil {
		return xerror.Errorf("unable to open run ledger: %w", err)
	}
	return data.SaveOutcome(db, outcome)
}

func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	r := chi.NewRouter()
	r.Get("/metrics", m.Handler().ServeHTTP)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server error: %v", err) //nolint
		}
	}()

	log.Info("Serving metrics on %s/metrics", addr) //nolint
	return srv
}

func shutdownMetrics(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Metrics server forced to shutdown: %v", err) //nolint
	}
}
