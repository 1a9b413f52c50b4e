// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/thalassa/internal/audit"
	"github.com/tomtom215/thalassa/internal/database"
	"github.com/tomtom215/thalassa/internal/logging"
	"github.com/tomtom215/thalassa/internal/metrics"
	"github.com/tomtom215/thalassa/internal/models"
)

// defaultPositionSource tags samples recorded without an explicit source.
const defaultPositionSource = "AIS"

// RecordPosition stores a position sample for the vessel.
//
// Recording is idempotent on (vessel, timestamp): if a sample already
// exists for that pair the stored sample is returned with created
// false and the incoming data is discarded. Otherwise the sample is
// associated with the vessel's active voyage (auto-starting a planned
// voyage inside the grace window), persisted atomically together with
// the vessel's cached last-known position, and a POSITION_RECORDED
// audit entry is written.
func (s *Service) RecordPosition(ctx context.Context, vesselID int64, params models.NewPositionParams, userID string) (*models.Position, bool, error) {
	vessel, err := s.vessels.VesselByID(ctx, vesselID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, false, ErrVesselNotFound
		}
		return nil, false, fmt.Errorf("failed to load vessel %d: %w", vesselID, err)
	}

	voyage, err := s.findActiveVoyage(ctx, vessel.ID, params.Timestamp, userID)
	if err != nil {
		return nil, false, err
	}

	source := params.Source
	if source == "" {
		source = defaultPositionSource
	}

	position := &models.Position{
		VesselID:  vessel.ID,
		Latitude:  params.Latitude,
		Longitude: params.Longitude,
		Speed:     params.Speed,
		Heading:   params.Heading,
		Timestamp: params.Timestamp.UTC(),
		Source:    source,
		Accuracy:  params.Accuracy,
	}
	if voyage != nil {
		position.VoyageID = &voyage.ID
	}

	stored, created, err := s.positions.SavePosition(ctx, position)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save position: %w", err)
	}

	if !created {
		metrics.PositionDuplicatesTotal.Inc()
		logging.Ctx(ctx).Debug().
			Int64("vessel_id", vessel.ID).
			Time("timestamp", stored.Timestamp).
			Msg("Duplicate position resolved to existing sample")
		return stored, false, nil
	}

	metrics.PositionsRecordedTotal.Inc()

	details := map[string]interface{}{
		"latitude":  stored.Latitude,
		"longitude": stored.Longitude,
		"timestamp": stored.Timestamp,
		"source":    stored.Source,
	}
	if err := s.trail.Record(ctx, audit.ActionPositionRecorded, userID, &vessel.ID, stored.VoyageID, details); err != nil {
		return nil, false, err
	}

	return stored, true, nil
}

// CompleteVoyage transitions a voyage to the completed status with the
// given arrival time. A zero arrival defaults to now. The transition is
// audited as VOYAGE_UPDATED and the cached summary is invalidated so
// subsequent reads see the final status.
func (s *Service) CompleteVoyage(ctx context.Context, voyageID int64, arrival time.Time, userID string) (*models.Voyage, error) {
	voyage, err := s.voyages.VoyageByID(ctx, voyageID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrVoyageNotFound
		}
		return nil, fmt.Errorf("failed to load voyage %d: %w", voyageID, err)
	}

	if arrival.IsZero() {
		arrival = s.now()
	}
	arrival = arrival.UTC()

	if err := s.voyages.CompleteVoyage(ctx, voyageID, arrival); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrVoyageNotFound
		}
		return nil, fmt.Errorf("failed to complete voyage %d: %w", voyageID, err)
	}

	oldStatus := voyage.Status
	voyage.Status = models.VoyageStatusCompleted
	voyage.ArrivalTime = &arrival
	s.summaries.Delete(summaryCacheKey(voyageID))

	logging.Ctx(ctx).Info().
		Int64("voyage_id", voyageID).
		Time("arrival", arrival).
		Msg("Voyage completed")

	details := map[string]interface{}{
		"old_status":   string(oldStatus),
		"new_status":   string(models.VoyageStatusCompleted),
		"arrival_time": arrival,
	}
	if err := s.trail.Record(ctx, audit.ActionVoyageUpdated, userID, &voyage.VesselID, &voyage.ID, details); err != nil {
		return nil, err
	}

	return voyage, nil
}

// findActiveVoyage resolves the voyage a position at ts belongs to.
//
// An in-progress voyage whose window contains ts wins; when several
// overlap the most recent departure is chosen. Failing that, a planned
// voyage departing no later than ts plus the grace window is
// auto-started and returned, with a VOYAGE_UPDATED audit entry marking
// the transition. Returns nil when the position is unassociated.
func (s *Service) findActiveVoyage(ctx context.Context, vesselID int64, ts time.Time, userID string) (*models.Voyage, error) {
	voyage, err := s.voyages.InProgressVoyageAt(ctx, vesselID, ts)
	if err == nil {
		return voyage, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to find in-progress voyage: %w", err)
	}

	deadline := ts.Add(s.cfg.AutoStartGraceWindow)
	planned, err := s.voyages.PlannedVoyageDepartingBy(ctx, vesselID, deadline)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find planned voyage: %w", err)
	}

	if err := s.voyages.MarkVoyageInProgress(ctx, planned.ID); err != nil {
		return nil, fmt.Errorf("failed to auto-start voyage %d: %w", planned.ID, err)
	}
	planned.Status = models.VoyageStatusInProgress
	s.summaries.Delete(summaryCacheKey(planned.ID))
	metrics.VoyageAutoStartsTotal.Inc()

	logging.Ctx(ctx).Info().
		Int64("voyage_id", planned.ID).
		Int64("vessel_id", vesselID).
		Time("departure", planned.DepartureTime).
		Msg("Auto-started planned voyage for incoming position")

	details := map[string]interface{}{
		"auto_started": true,
		"old_status":   string(models.VoyageStatusPlanned),
		"new_status":   string(models.VoyageStatusInProgress),
	}
	if err := s.trail.Record(ctx, audit.ActionVoyageUpdated, userID, &vesselID, &planned.ID, details); err != nil {
		return nil, err
	}

	return planned, nil
}
