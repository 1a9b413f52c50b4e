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
	"github.com/tomtom215/thalassa/internal/models"
)

// VoyageRoute returns the voyage's recorded route in chronological
// order. Interpolated samples are excluded unless requested. Each
// access writes a ROUTE_ACCESSED audit entry.
func (s *Service) VoyageRoute(ctx context.Context, voyageID int64, includeInterpolated bool, userID string) (*models.RouteResult, error) {
	summary, err := s.voyageSummary(ctx, voyageID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrVoyageNotFound
		}
		return nil, fmt.Errorf("failed to load voyage %d: %w", voyageID, err)
	}

	positions, err := s.positions.VoyagePositions(ctx, voyageID, includeInterpolated)
	if err != nil {
		return nil, fmt.Errorf("failed to load voyage %d positions: %w", voyageID, err)
	}

	result := &models.RouteResult{
		Voyage: *summary,
		Points: make([]models.RoutePoint, 0, len(positions)),
	}
	for _, p := range positions {
		result.Points = append(result.Points, routePoint(p))
	}

	s.trail.RecordOrLog(ctx, audit.ActionRouteAccessed, userID, nil, &voyageID,
		map[string]interface{}{
			"position_count":       len(result.Points),
			"include_interpolated": includeInterpolated,
		})

	return result, nil
}

// VesselHistory returns the vessel's positions within [start, end],
// capped at limit, with the voyages they belong to resolved for
// display. HasMore reports possible truncation: it is true exactly
// when the returned count equals the limit. Each access writes a
// ROUTE_ACCESSED audit entry.
func (s *Service) VesselHistory(ctx context.Context, vesselID int64, start, end time.Time, limit int, userID string) (*models.HistoryResult, error) {
	vessel, err := s.vessels.VesselByID(ctx, vesselID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrVesselNotFound
		}
		return nil, fmt.Errorf("failed to load vessel %d: %w", vesselID, err)
	}

	if limit <= 0 {
		limit = s.cfg.DefaultHistoryLimit
	}
	if s.cfg.MaxHistoryLimit > 0 && limit > s.cfg.MaxHistoryLimit {
		limit = s.cfg.MaxHistoryLimit
	}

	positions, err := s.positions.VesselPositions(ctx, vesselID, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load vessel %d positions: %w", vesselID, err)
	}

	result := &models.HistoryResult{
		Vessel:         vessel.Summary(),
		Start:          start,
		End:            end,
		Positions:      make([]models.RoutePoint, 0, len(positions)),
		Voyages:        make(map[int64]*models.VoyageSummary),
		TotalPositions: len(positions),
		HasMore:        len(positions) == limit,
	}

	for _, p := range positions {
		result.Positions = append(result.Positions, routePoint(p))

		if p.VoyageID == nil {
			continue
		}
		if _, seen := result.Voyages[*p.VoyageID]; seen {
			continue
		}
		summary, err := s.voyageSummary(ctx, *p.VoyageID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load voyage %d summary: %w", *p.VoyageID, err)
		}
		result.Voyages[*p.VoyageID] = summary
	}

	s.trail.RecordOrLog(ctx, audit.ActionRouteAccessed, userID, &vesselID, nil,
		map[string]interface{}{
			"position_count": len(result.Positions),
			"has_more":       result.HasMore,
		})

	return result, nil
}

func routePoint(p *models.Position) models.RoutePoint {
	point := models.RoutePoint{
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Speed:          p.Speed,
		Heading:        p.Heading,
		Source:         p.Source,
		Accuracy:       p.Accuracy,
		IsInterpolated: p.IsInterpolated,
		VoyageID:       p.VoyageID,
	}
	ts := p.Timestamp
	point.Timestamp = &ts
	return point
}
