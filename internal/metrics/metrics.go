// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package metrics provides Prometheus instrumentation for position
// ingestion, replay generation, retention sweeps, and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Position ingestion metrics
	PositionsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thalassa_positions_recorded_total",
			Help: "Total number of position samples stored",
		},
	)

	PositionDuplicatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thalassa_position_duplicates_total",
			Help: "Total number of duplicate position recordings resolved idempotently",
		},
	)

	VoyageAutoStartsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thalassa_voyage_auto_starts_total",
			Help: "Total number of planned voyages auto-started by incoming positions",
		},
	)

	// Replay metrics
	ReplaysGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thalassa_replays_generated_total",
			Help: "Total number of replay sequences generated",
		},
	)

	InterpolatedPointsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thalassa_interpolated_points_total",
			Help: "Total number of synthetic points inserted by the replay gap interpolator",
		},
	)

	// Retention metrics
	RetentionDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thalassa_retention_deleted_total",
			Help: "Total number of records removed by retention sweeps",
		},
		[]string{"target"}, // "positions", "audit"
	)

	RetentionSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thalassa_retention_sweep_duration_seconds",
			Help:    "Duration of retention sweep runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Ingest metrics
	IngestBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thalassa_ingest_batches_total",
			Help: "Total number of AIS ingest batches by outcome",
		},
		[]string{"outcome"}, // "success", "partial", "failure"
	)

	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thalassa_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thalassa_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thalassa_api_active_requests",
			Help: "Number of API requests currently in flight",
		},
	)
)

// RecordAPIRequest records latency and throughput for one API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, endpoint, statusCode).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// ObserveSweep records the duration of one retention sweep run.
func ObserveSweep(start time.Time) {
	RetentionSweepDuration.Observe(time.Since(start).Seconds())
}
