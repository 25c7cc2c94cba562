// Package main starts the Solana todo service layer.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/soltodo/service-layer/internal/api"
	"github.com/soltodo/service-layer/internal/auth"
	"github.com/soltodo/service-layer/internal/chain"
	"github.com/soltodo/service-layer/internal/config"
	"github.com/soltodo/service-layer/internal/logging"
	"github.com/soltodo/service-layer/internal/todo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(os.Stdout, os.Getenv("LOG_LEVEL"))

	chainClient, err := chain.NewClient(chain.Config{
		RPCURL:     cfg.Solana.RPCURL,
		Commitment: cfg.Solana.Commitment,
		Timeout:    cfg.Solana.Timeout,
	})
	if err != nil {
		log.Fatalf("create chain client: %v", err)
	}

	authService := auth.New(cfg.JWT.Secret, cfg.JWT.Expiration)

	todoService, err := todo.NewService(chainClient, cfg.Solana.ProgramID, logger)
	if err != nil {
		log.Fatalf("create todo service: %v", err)
	}

	registry := prometheus.NewRegistry()
	server := api.New(cfg, logger, authService, todoService, chainClient, registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}
