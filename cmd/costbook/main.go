package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"costbook/internal/backend"
	"costbook/internal/cli"
	"costbook/internal/config"
	apphttp "costbook/internal/http"
	applog "costbook/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	b, err := backend.NewFactory(applog.Component(applog.ComponentBackend)).CreateBackend(startCtx, backendCfg)
	cancelStart()
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, applog.FieldOperation, applog.OpStartup)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, b, apphttp.Options{RateLimitPerMinute: cfg.RateLimitPerMinute})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := b.Close(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	go b.Refresher.Run(ctx)

	logger.Info("Starting costbook server",
		"port", cfg.Port,
		applog.FieldDBPath, b.Store.Path(),
		applog.FieldRatesPolicy, b.Refresher.Policy())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		_ = b.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
