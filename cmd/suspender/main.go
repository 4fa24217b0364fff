package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	suspender "github.com/abrorxon-karimxonov/zen-auto-inactive-tabs"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/host"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/server"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		cfgPath = flag.String("config", "", "path to yaml config")
		listen  = flag.String("listen", "", "override listen address")
	)
	flag.Parse()

	logger := newLogger()

	cfg := loadConfig(logger, *cfgPath)
	if *listen != "" {
		cfg.Listen = *listen
	}

	if err := run(logger, cfg); err != nil {
		logger.Error("daemon failed", "err", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(h).With(slog.String("service", "suspender"))
	slog.SetDefault(logger)
	return logger
}

func loadConfig(logger *slog.Logger, path string) *config.App {
	if path == "" {
		return config.DefaultApp()
	}
	cfg, err := config.LoadApp(path)
	if err != nil {
		logger.Warn("config unreadable, using defaults", "path", path, "err", err)
		return config.DefaultApp()
	}
	return cfg
}

func run(logger *slog.Logger, cfg *config.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := openStore(logger, cfg.StorePath)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("settings store close failed", "err", err)
		}
	}()

	registry := host.NewRegistry()

	sus, err := suspender.New(ctx, cfg, logger, registry, st)
	if err != nil {
		return err
	}
	defer func() { _ = sus.Close() }()

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.New(logger, sus, registry).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("command interface is listening", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openStore(logger *slog.Logger, path string) store.Store {
	if path == "" {
		logger.Info("no store path configured, settings will not survive a restart")
		return store.NewNoOp()
	}
	st, err := store.OpenPebble(path)
	if err != nil {
		// unreadable store degrades to defaults instead of failing the start
		logger.Warn("settings store unusable, running without persistence", "path", path, "err", err)
		return store.NewNoOp()
	}
	return st
}
