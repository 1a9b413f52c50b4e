// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/thalassa/internal/config"
	"github.com/tomtom215/thalassa/internal/database"
	"github.com/tomtom215/thalassa/internal/logging"
	"github.com/tomtom215/thalassa/internal/metrics"
	"github.com/tomtom215/thalassa/internal/models"
)

// ErrNoIdentity is returned when a report carries neither an IMO
// number nor an MMSI.
var ErrNoIdentity = errors.New("report has neither IMO nor MMSI")

// VesselStore is the vessel persistence surface used by ingestion.
type VesselStore interface {
	VesselByIMO(ctx context.Context, imo string) (*models.Vessel, error)
	VesselByMMSI(ctx context.Context, mmsi string) (*models.Vessel, error)
	CreateVessel(ctx context.Context, v *models.Vessel) (*models.Vessel, error)
	UpdateVessel(ctx context.Context, v *models.Vessel) error
	StaleVessels(ctx context.Context, cutoff time.Time) ([]*models.Vessel, error)
}

// PositionRecorder hands ingested samples to the history service.
type PositionRecorder interface {
	RecordPosition(ctx context.Context, vesselID int64, params models.NewPositionParams, userID string) (*models.Position, bool, error)
}

// Service ingests AIS reports.
type Service struct {
	vessels  VesselStore
	recorder PositionRecorder
	cfg      config.TrackingConfig
	now      func() time.Time
}

// NewService constructs the tracking service.
func NewService(vessels VesselStore, recorder PositionRecorder, cfg config.TrackingConfig) *Service {
	return &Service{
		vessels:  vessels,
		recorder: recorder,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ProcessReport normalizes one report and applies it: the vessel
// record is created or updated (skipped when it was refreshed more
// recently than the update threshold), and the position sample is
// recorded in history when coordinates are present.
//
// Returns the vessel, whether it was created, and whether the report
// was applied at all (false when skipped for recency).
func (s *Service) ProcessReport(ctx context.Context, report Report) (*models.Vessel, bool, bool, error) {
	n := Normalize(report, s.now())
	if n.IMO == "" && n.MMSI == "" {
		return nil, false, false, ErrNoIdentity
	}

	existing, err := s.findVessel(ctx, n)
	if err != nil {
		return nil, false, false, err
	}

	// Skip reports for vessels refreshed within the update threshold;
	// AIS feeds repeat themselves heavily.
	if existing != nil && s.now().Sub(existing.LastUpdate) < s.cfg.UpdateThreshold {
		logging.Ctx(ctx).Debug().
			Str("imo", existing.IMONumber).
			Time("last_update", existing.LastUpdate).
			Msg("Skipping report, vessel updated recently")
		return existing, false, false, nil
	}

	vessel, created, err := s.upsertVessel(ctx, existing, n)
	if err != nil {
		return nil, false, false, err
	}

	if n.Latitude != nil && n.Longitude != nil {
		_, _, err := s.recorder.RecordPosition(ctx, vessel.ID, models.NewPositionParams{
			Latitude:  *n.Latitude,
			Longitude: *n.Longitude,
			Timestamp: n.Timestamp,
			Speed:     n.Speed,
			Heading:   n.Heading,
			Source:    "AIS",
		}, "")
		if err != nil {
			// History recording failure does not fail the vessel update.
			logging.Ctx(ctx).Warn().Err(err).
				Str("imo", vessel.IMONumber).
				Msg("Failed to record position history for ingested report")
		}
	}

	return vessel, created, true, nil
}

// IngestBatch processes a batch of reports and summarizes the outcome.
func (s *Service) IngestBatch(ctx context.Context, reports []Report) *models.IngestSummary {
	summary := &models.IngestSummary{
		StartedAt:    s.now(),
		FetchedCount: len(reports),
	}

	for _, report := range reports {
		_, created, applied, err := s.ProcessReport(ctx, report)
		if err != nil {
			summary.ErrorCount++
			summary.Errors = append(summary.Errors, err.Error())
			continue
		}
		summary.ProcessedCount++
		switch {
		case !applied:
			summary.SkippedCount++
		case created:
			summary.CreatedCount++
		default:
			summary.UpdatedCount++
		}
	}

	summary.CompletedAt = s.now()
	summary.Success = summary.ErrorCount == 0

	outcome := "success"
	if summary.ErrorCount > 0 {
		outcome = "partial"
		if summary.ProcessedCount == 0 {
			outcome = "failure"
		}
	}
	metrics.IngestBatchesTotal.WithLabelValues(outcome).Inc()

	logging.Ctx(ctx).Info().
		Int("fetched", summary.FetchedCount).
		Int("created", summary.CreatedCount).
		Int("updated", summary.UpdatedCount).
		Int("skipped", summary.SkippedCount).
		Int("errors", summary.ErrorCount).
		Msg("AIS ingest batch completed")

	return summary
}

// VesselByIdentifier resolves a vessel by IMO first, then MMSI.
func (s *Service) VesselByIdentifier(ctx context.Context, imo, mmsi string) (*models.Vessel, error) {
	if imo != "" {
		v, err := s.vessels.VesselByIMO(ctx, imo)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
	}
	if mmsi != "" {
		return s.vessels.VesselByMMSI(ctx, mmsi)
	}
	return nil, database.ErrNotFound
}

// StaleVessels returns vessels without an update for the given window;
// zero applies the configured default.
func (s *Service) StaleVessels(ctx context.Context, staleAfter time.Duration) ([]*models.Vessel, error) {
	if staleAfter <= 0 {
		staleAfter = s.cfg.StaleAfter
	}
	return s.vessels.StaleVessels(ctx, s.now().Add(-staleAfter))
}

func (s *Service) findVessel(ctx context.Context, n NormalizedReport) (*models.Vessel, error) {
	if n.IMO != "" {
		v, err := s.vessels.VesselByIMO(ctx, n.IMO)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up vessel by IMO %s: %w", n.IMO, err)
		}
	}
	if n.MMSI != "" {
		v, err := s.vessels.VesselByMMSI(ctx, n.MMSI)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up vessel by MMSI %s: %w", n.MMSI, err)
		}
	}
	return nil, nil
}

func (s *Service) upsertVessel(ctx context.Context, existing *models.Vessel, n NormalizedReport) (*models.Vessel, bool, error) {
	if existing == nil {
		vessel := &models.Vessel{
			IMONumber:  n.IMO,
			Name:       n.Name,
			VesselType: n.VesselType,
			Flag:       n.Flag,
			CargoType:  n.CargoType,
			Operator:   n.Operator,
			LastUpdate: n.Timestamp,
		}
		if n.MMSI != "" {
			vessel.MMSI = &n.MMSI
		}
		created, err := s.vessels.CreateVessel(ctx, vessel)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create vessel: %w", err)
		}
		return created, true, nil
	}

	existing.Name = n.Name
	existing.VesselType = n.VesselType
	existing.Flag = n.Flag
	existing.CargoType = n.CargoType
	existing.Operator = n.Operator
	if n.MMSI != "" {
		existing.MMSI = &n.MMSI
	}
	existing.LastUpdate = n.Timestamp

	if err := s.vessels.UpdateVessel(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("failed to update vessel %d: %w", existing.ID, err)
	}
	return existing, false, nil
}
