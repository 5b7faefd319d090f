package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/itchan-dev/authgate/backend/internal/router"
	"github.com/itchan-dev/authgate/backend/internal/setup"
	"github.com/itchan-dev/authgate/shared/config"
	"github.com/itchan-dev/authgate/shared/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Storage.Cleanup()

	server := &http.Server{
		Addr:              cfg.Public.HttpAddr,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// completions stream for up to the upstream timeout
		WriteTimeout: cfg.Public.Completion.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info("server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
