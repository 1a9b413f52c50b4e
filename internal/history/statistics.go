// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/thalassa/internal/database"
	"github.com/tomtom215/thalassa/internal/geo"
	"github.com/tomtom215/thalassa/internal/models"
)

// VoyageStatistics computes aggregate route statistics for a voyage
// from its real (non-interpolated) positions.
//
// Distance is the sum of great-circle legs between consecutive
// samples; duration spans first to last sample. Speed aggregates
// consider recorded speed values only; a route with no speeds reports
// zeros with HasSpeedData false. A voyage with zero positions fails
// with ErrEmptyRoute.
func (s *Service) VoyageStatistics(ctx context.Context, voyageID int64) (*models.StatisticsResult, error) {
	summary, err := s.voyageSummary(ctx, voyageID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrVoyageNotFound
		}
		return nil, fmt.Errorf("failed to load voyage %d: %w", voyageID, err)
	}

	positions, err := s.positions.VoyagePositions(ctx, voyageID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load voyage %d positions: %w", voyageID, err)
	}
	if len(positions) == 0 {
		return nil, ErrEmptyRoute
	}

	result := &models.StatisticsResult{
		VoyageID:       voyageID,
		VesselName:     summary.VesselName,
		Route:          summary.PortFrom + " -> " + summary.PortTo,
		Status:         summary.Status,
		TotalPositions: len(positions),
	}

	for i := 1; i < len(positions); i++ {
		result.TotalDistanceNM += geo.HaversineNM(
			positions[i-1].Latitude, positions[i-1].Longitude,
			positions[i].Latitude, positions[i].Longitude)
	}

	first := positions[0].Timestamp
	last := positions[len(positions)-1].Timestamp
	result.FirstPositionTime = &first
	result.LastPositionTime = &last
	if len(positions) >= 2 {
		result.DurationHours = last.Sub(first).Hours()
	}

	var speedSum float64
	var speedCount int
	for _, p := range positions {
		if p.Speed == nil {
			continue
		}
		v := *p.Speed
		if speedCount == 0 {
			result.MinSpeedKnots = v
			result.MaxSpeedKnots = v
		} else {
			if v < result.MinSpeedKnots {
				result.MinSpeedKnots = v
			}
			if v > result.MaxSpeedKnots {
				result.MaxSpeedKnots = v
			}
		}
		speedSum += v
		speedCount++
	}
	if speedCount > 0 {
		result.HasSpeedData = true
		result.AverageSpeedKnots = speedSum / float64(speedCount)
	}

	return result, nil
}
