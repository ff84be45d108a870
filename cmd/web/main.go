package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"paper-review/internal/bootstrap"
	"paper-review/internal/shared/config"
	"paper-review/internal/shared/server"
	"paper-review/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.LogLevel)

	if err := run(cfg); err != nil {
		telemetry.Error("server.failed", map[string]any{"err": err})
		telemetry.Sync()
		os.Exit(1)
	}
	telemetry.Sync()
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		return err
	}

	addr := server.Addr(cfg.Port)
	// No write timeout: POST /upload blocks for as long as the analysis takes.
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		telemetry.Info("server.listening", map[string]any{"addr": addr, "endpoint": cfg.AnalysisEndpoint})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		telemetry.Info("server.shutdown", nil)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
