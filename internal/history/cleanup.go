// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package history

import (
	"context"
	"fmt"

	"github.com/tomtom215/thalassa/internal/audit"
	"github.com/tomtom215/thalassa/internal/logging"
	"github.com/tomtom215/thalassa/internal/metrics"
	"github.com/tomtom215/thalassa/internal/models"
)

// CleanupOldPositions deletes position samples older than the
// retention window. retentionDays of zero applies the configured
// default. In dry-run mode counts are computed but nothing is deleted.
//
// The DATA_RETENTION audit entry is written before the delete
// executes, so the purge cannot remove its own evidence.
func (s *Service) CleanupOldPositions(ctx context.Context, retentionDays int, dryRun bool) (*models.CleanupResult, error) {
	if retentionDays <= 0 {
		retentionDays = s.cfg.PositionRetentionDays
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)

	found, err := s.positions.CountPositionsBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired positions: %w", err)
	}

	result := &models.CleanupResult{
		Action:        "position_cleanup",
		DryRun:        dryRun,
		CutoffDate:    cutoff,
		RecordsFound:  found,
		RetentionDays: retentionDays,
	}
	if dryRun || found == 0 {
		return result, nil
	}

	details := map[string]interface{}{
		"cutoff_date":    cutoff,
		"records_found":  found,
		"retention_days": retentionDays,
	}
	if err := s.trail.Record(ctx, audit.ActionDataRetention, audit.SystemUser, nil, nil, details); err != nil {
		return nil, err
	}

	deleted, err := s.positions.DeletePositionsBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired positions: %w", err)
	}
	result.RecordsDeleted = deleted
	metrics.RetentionDeletedTotal.WithLabelValues("positions").Add(float64(deleted))

	logging.Ctx(ctx).Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Int("retention_days", retentionDays).
		Msg("Position retention sweep completed")

	return result, nil
}

// CleanupOldAuditLogs deletes audit entries past their retention date.
// Like the position sweep, a final DATA_RETENTION entry describing the
// purge is written before the delete, and that entry carries a fresh
// retention date so it survives the purge it describes.
func (s *Service) CleanupOldAuditLogs(ctx context.Context, dryRun bool) (*models.CleanupResult, error) {
	now := s.now()
	store := s.trail.Store()

	found, err := store.CountExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired audit entries: %w", err)
	}

	result := &models.CleanupResult{
		Action:       "audit_cleanup",
		DryRun:       dryRun,
		CutoffDate:   now,
		RecordsFound: found,
	}
	if dryRun || found == 0 {
		return result, nil
	}

	details := map[string]interface{}{
		"cutoff_date":   now,
		"records_found": found,
	}
	if err := s.trail.Record(ctx, audit.ActionDataRetention, audit.SystemUser, nil, nil, details); err != nil {
		return nil, err
	}

	deleted, err := store.DeleteExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired audit entries: %w", err)
	}
	result.RecordsDeleted = deleted
	metrics.RetentionDeletedTotal.WithLabelValues("audit").Add(float64(deleted))

	logging.Ctx(ctx).Info().
		Int64("deleted", deleted).
		Time("cutoff", now).
		Msg("Audit retention sweep completed")

	return result, nil
}
