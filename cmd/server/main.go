// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package main is the entry point for the Thalassa server.
//
// Thalassa records vessel position history, associates samples with
// voyages, and serves route retrieval, statistics, and time-compressed
// voyage replay over a REST API.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, YAML file, and THALASSA_* env vars (Koanf v2)
//  2. Database: DuckDB with the vessel/voyage/position schema
//  3. Audit trail: DuckDB-backed compliance log
//  4. Services: position history and vessel tracking
//  5. Supervisor tree: retention sweeper and HTTP server under suture
//
// Graceful shutdown runs on SIGINT and SIGTERM: the HTTP server drains
// in-flight requests, the sweeper stops, and the database is
// checkpointed on close.
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
	"time"

	"github.com/tomtom215/thalassa/internal/api"
	"github.com/tomtom215/thalassa/internal/audit"
	"github.com/tomtom215/thalassa/internal/config"
	"github.com/tomtom215/thalassa/internal/database"
	"github.com/tomtom215/thalassa/internal/history"
	"github.com/tomtom215/thalassa/internal/logging"
	"github.com/tomtom215/thalassa/internal/retention"
	"github.com/tomtom215/thalassa/internal/supervisor"
	"github.com/tomtom215/thalassa/internal/tracking"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logging.Info().Str("version", version).Msg("Starting Thalassa")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditStore := audit.NewDuckDBStore(db.Conn())
	if err := auditStore.CreateTable(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create audit table")
	}
	trail := audit.NewTrail(auditStore, &audit.Config{
		Enabled:       cfg.Audit.Enabled,
		RetentionDays: cfg.Audit.RetentionDays,
	})
	logging.Info().Bool("enabled", cfg.Audit.Enabled).Msg("Audit trail initialized")

	historyService := history.NewService(db, db, db, trail, cfg.History)
	trackingService := tracking.NewService(db, historyService, cfg.Tracking)

	handler := api.NewHandler(historyService, trackingService, auditStore, db)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(retention.NewSweeper(historyService, cfg.Audit.SweepInterval))
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the channel so shutdown errors surface.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
