// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/capweb/config"
	"github.com/hashicorp/capweb/session"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	envFile := flag.String("env-file", ".env", "path to an optional .env file")
	flag.Parse()

	// Load environment variables from the .env file if present.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "unable to load %s: %s\n", *envFile, err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	const op = "run"
	logger := cfg.Logger("auth0-sample")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := auth0.NewProvider(&cfg.Auth0, auth0.WithLogger(logger.Named("auth0")))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer p.Done()

	store := session.NewMemoryStore()
	if cfg.Session.CleanupInterval > 0 {
		store.StartCleanup(ctx, cfg.Session.CleanupInterval)
	}
	sm, err := session.NewManager(store, append(cfg.SessionOptions(), session.WithLogger(logger.Named("session")))...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	mux, err := newRouter(&cfg.Auth0, p, sm, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	srvCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvCh <- err
		}
		close(srvCh)
	}()

	select {
	case err := <-srvCh:
		if err != nil {
			return fmt.Errorf("%s: server closed with error: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: unable to shut down: %w", op, err)
	}
	return nil
}
