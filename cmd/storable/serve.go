package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/storable/pkg/recordapi"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the record API server",
		Long: `Start the record API over the configured backend.

Routes:
  GET/POST/PUT/DELETE /collections/{collection}/records
  GET /ws        websocket proxy endpoint
  GET /metrics   Prometheus metrics
  GET /healthz   health check

Examples:
  storable serve
  storable serve --addr=:9090
  storable serve -c ./storable.hcl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, flags *globalFlags, addr string) error {
	logger, err := flags.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	b, err := newBackend(cfg.Server)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []recordapi.Option{
		recordapi.WithLogger(logger),
		recordapi.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		recordapi.WithCheckOrigin(originChecker(cfg.Server.AllowedOrigins)),
	}
	if d := cfg.Server.Timeout(); d > 0 {
		opts = append(opts, recordapi.WithRequestTimeout(d))
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           recordapi.New(b, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	out := cmd.OutOrStdout()
	success(out, "Serving %s on %s", cfg.Server.Backend, cfg.Server.Addr)
	for _, coll := range cfg.Collections {
		info(out, "/collections/%s/records", coll.ID)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
