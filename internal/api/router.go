// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package api provides the HTTP surface over the history and tracking
// services using the Chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/thalassa/internal/config"
	"github.com/tomtom215/thalassa/internal/middleware"
)

// Router wires handlers into the HTTP route tree.
type Router struct {
	handler *Handler
	cfg     *config.ServerConfig
}

// NewRouter creates a Router over the given handler set.
func NewRouter(handler *Handler, cfg *config.ServerConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup builds the route tree with the global middleware stack.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-User-ID"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Health sits outside the rate limit so monitoring is never
		// throttled.
		r.Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow))
			r.Use(middleware.PrometheusMetrics)

			r.Route("/vessels", func(r chi.Router) {
				r.Get("/stale", router.handler.StaleVessels)
				r.Post("/{vesselID}/positions", router.handler.RecordPosition)
				r.Get("/{vesselID}/history", router.handler.VesselHistory)
			})

			r.Route("/voyages/{voyageID}", func(r chi.Router) {
				r.Get("/route", router.handler.VoyageRoute)
				r.Get("/statistics", router.handler.VoyageStatistics)
				r.Post("/complete", router.handler.CompleteVoyage)
				r.Post("/replay", router.handler.GenerateReplay)
				r.Post("/replay/session", router.handler.CreateReplaySession)
				r.Get("/replay/frames/{frameIndex}", router.handler.ReplayFrame)
			})

			r.Get("/ports", router.handler.ListPorts)
			r.Get("/ports/{portID}", router.handler.Port)

			r.Post("/ingest", router.handler.IngestReports)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/cleanup/positions", router.handler.CleanupPositions)
				r.Post("/cleanup/audit", router.handler.CleanupAuditLogs)
			})

			r.Get("/audit", router.handler.QueryAudit)
			r.Get("/audit/stats", router.handler.AuditStats)
		})
	})

	return r
}
