package cmd

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rigforge/rigforge/internal/output"
)

var serveMetricsAddrFlag string

// NewServeMetricsCmd creates the serve-metrics command, a long-lived process
// that exposes the builder package's phase_duration_seconds/components
// Prometheus series (internal/core/builder/metrics.go, registered on the
// default registerer) over HTTP, for CI dashboards wrapping repeated
// rigforge build invocations against one process (SUPPLEMENTED FEATURES).
func NewServeMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Serve build pipeline metrics for Prometheus scraping",
		Long: `Start an HTTP server exposing the rigforge_builder_* metrics (phase
duration histograms, component counts) accumulated by every Builder in
this process, at /metrics in the standard Prometheus exposition format.

This command does not itself run any builds; it is meant to be started
once alongside a long-lived process, or a CI job that calls the build
subcommand repeatedly against the same host, so a scraper can observe
phase timings across runs.

Examples:
  rigforge serve-metrics --addr :9090`,
		Args: cobra.NoArgs,
		RunE: runServeMetrics,
	}
	cmd.Flags().StringVar(&serveMetricsAddrFlag, "addr", ":9090", "Address to listen on")
	return cmd
}

func runServeMetrics(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: serveMetricsAddrFlag, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		output.Println("serving metrics on " + serveMetricsAddrFlag + "/metrics")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return asExitError(server.Shutdown(context.Background()))
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return asExitError(err)
	}
}
