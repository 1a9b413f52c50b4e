// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package retention runs the periodic data-retention sweeps that enforce
// the position and audit-log retention policies.
package retention

import (
	"context"
	"time"

	"github.com/tomtom215/thalassa/internal/logging"
	"github.com/tomtom215/thalassa/internal/metrics"
	"github.com/tomtom215/thalassa/internal/models"
)

// Cleaner is the slice of the history service the sweeper drives.
type Cleaner interface {
	CleanupOldPositions(ctx context.Context, retentionDays int, dryRun bool) (*models.CleanupResult, error)
	CleanupOldAuditLogs(ctx context.Context, dryRun bool) (*models.CleanupResult, error)
}

// Sweeper periodically deletes expired positions and audit entries.
// It implements suture.Service and runs until its context is canceled.
//
// The first sweep runs one interval after startup, not immediately, so a
// crash-looping process does not hammer the database with delete scans.
type Sweeper struct {
	cleaner  Cleaner
	interval time.Duration
	name     string
}

// NewSweeper creates a retention sweeper running on the given interval.
func NewSweeper(cleaner Cleaner, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{
		cleaner:  cleaner,
		interval: interval,
		name:     "retention-sweeper",
	}
}

// Serve implements suture.Service.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Sweep runs one full retention pass. Exposed so operators can trigger
// it outside the timer through the admin endpoints.
func (s *Sweeper) Sweep(ctx context.Context) {
	s.sweep(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	log := logging.Ctx(ctx)

	if result, err := s.cleaner.CleanupOldPositions(ctx, 0, false); err != nil {
		log.Error().Err(err).Msg("Position retention sweep failed")
	} else {
		log.Info().
			Int64("deleted", result.RecordsDeleted).
			Time("cutoff", result.CutoffDate).
			Msg("Position retention sweep complete")
	}

	if result, err := s.cleaner.CleanupOldAuditLogs(ctx, false); err != nil {
		log.Error().Err(err).Msg("Audit retention sweep failed")
	} else {
		log.Info().
			Int64("deleted", result.RecordsDeleted).
			Msg("Audit retention sweep complete")
	}

	metrics.ObserveSweep(start)
}

// String implements fmt.Stringer for supervisor logging.
func (s *Sweeper) String() string {
	return s.name
}
