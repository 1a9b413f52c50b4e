// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package retention

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomtom215/thalassa/internal/models"
)

type fakeCleaner struct {
	positionSweeps atomic.Int64
	auditSweeps    atomic.Int64
	failPositions  bool
}

func (f *fakeCleaner) CleanupOldPositions(_ context.Context, retentionDays int, dryRun bool) (*models.CleanupResult, error) {
	f.positionSweeps.Add(1)
	if f.failPositions {
		return nil, errors.New("boom")
	}
	return &models.CleanupResult{Action: "positions", DryRun: dryRun, RetentionDays: retentionDays}, nil
}

func (f *fakeCleaner) CleanupOldAuditLogs(_ context.Context, dryRun bool) (*models.CleanupResult, error) {
	f.auditSweeps.Add(1)
	return &models.CleanupResult{Action: "audit", DryRun: dryRun}, nil
}

func TestSweeper_RunsOnInterval(t *testing.T) {
	cleaner := &fakeCleaner{}
	sweeper := NewSweeper(cleaner, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Serve(ctx) }()

	assert.Eventually(t, func() bool {
		return cleaner.positionSweeps.Load() >= 2 && cleaner.auditSweeps.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSweeper_AuditSweepRunsAfterPositionFailure(t *testing.T) {
	cleaner := &fakeCleaner{failPositions: true}
	sweeper := NewSweeper(cleaner, time.Hour)

	sweeper.Sweep(context.Background())

	assert.Equal(t, int64(1), cleaner.positionSweeps.Load())
	assert.Equal(t, int64(1), cleaner.auditSweeps.Load())
}

func TestSweeper_DefaultInterval(t *testing.T) {
	sweeper := NewSweeper(&fakeCleaner{}, 0)
	assert.Equal(t, 24*time.Hour, sweeper.interval)
}

func TestSweeper_String(t *testing.T) {
	assert.Equal(t, "retention-sweeper", NewSweeper(&fakeCleaner{}, time.Hour).String())
}
