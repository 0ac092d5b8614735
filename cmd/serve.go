package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"embedder/internal/metrics"
	"embedder/internal/server"
)

const shutdownTimeout = 30 * time.Second

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the render pipeline over HTTP",
	Long: `Starts an HTTP service with these routes:

  GET  /health                 liveness probe
  GET  /metrics                Prometheus metrics
  GET  /api/providers[/{name}] provider catalogue
  GET  /api/resolve            ?play=...&provider=...
  GET  /api/embed              ?play=...&provider=...&wraptag=...&class=...&format=html|json
                               any other query key is an attribute override
  POST /api/page               renders the placeholders of the posted HTML document`,
	Args: cobra.NoArgs,
	RunE: serveRun,
}

func init() {
	serveCmd.Flags().StringVarP(&flagListen, "listen", "l", "", "Listen address (default: :8080)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	if flagListen != "" {
		cfg.Listen = flagListen
	}

	// The service always logs requests, whatever the CLI log level.
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.SetAppInfo(Version, runtime.Version())

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(server.Config{Registry: a.registry, Renderer: a.renderer, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "providers", a.registry.Names())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
