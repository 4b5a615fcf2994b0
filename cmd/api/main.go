package main

import (
	"context"
	"errors"
	"famlink/internal/config"
	"famlink/internal/httpserver"
	"famlink/internal/logger"
	"famlink/internal/metrics"
	"famlink/internal/models"
	"famlink/internal/store"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg := config.Load()
	lg := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Production: cfg.IsProduction()})
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New("famlink")
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	gw, err := store.Open(connectCtx, cfg.DB.DSN(), store.Config{
		MaxOpen:          cfg.DB.MaxOpen,
		MinIdle:          cfg.DB.MinIdle,
		IdleTimeout:      cfg.DB.IdleTimeout,
		StatementTimeout: cfg.DB.StatementTimeout,
		MaxLifetime:      cfg.DB.MaxLifetime,
	}, store.WithLogger(lg, cfg.DB.LogLevel), store.WithObserver(rec))
	cancel()
	if err != nil {
		lg.Fatalw("db connect failed", "host", cfg.DB.Host, "database", cfg.DB.Name, "error", err)
	}
	lg.Infow("connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

	if cfg.DB.AutoMigrate {
		if err := gw.Migrate(ctx, models.All()...); err != nil {
			lg.Fatalw("automigrate failed", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.NewRouter(cfg, gw, lg, rec),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Infow("listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		lg.Infow("shutting down")
	case err := <-errCh:
		if err != nil {
			lg.Errorw("http server failed", "error", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Errorw("http shutdown", "error", err)
	}
	if err := gw.Close(); err != nil {
		lg.Errorw("db close", "error", err)
	}
	lg.Infow("stopped")
}
