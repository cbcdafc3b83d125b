package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/todos-api/internal/config"
	"example.com/todos-api/internal/db"
	"example.com/todos-api/internal/httpapi"
	"example.com/todos-api/internal/logger"
	"example.com/todos-api/internal/service"
	"example.com/todos-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	log := logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeStore()

	handlers := httpapi.NewHandlers(service.New(store), httpapi.Options{
		InfoHeader: cfg.InfoHeader,
		Logger:     log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("todos API listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exited")
}

func openStore(ctx context.Context, cfg config.Config) (service.Store, func(), error) {
	if cfg.StoreDriver == db.DriverMemory {
		return storage.NewMemory(), func() {}, nil
	}

	conn, err := db.Open(ctx, cfg.StoreDriver, cfg.DSN(), cfg.Pool())
	if err != nil {
		return nil, nil, err
	}
	if err := conn.EnsureSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	repo, err := storage.NewRepository(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return repo, func() {
		_ = repo.Close()
		_ = conn.Close()
	}, nil
}
