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
	"github.com/tomtom215/thalassa/internal/geo"
	"github.com/tomtom215/thalassa/internal/metrics"
	"github.com/tomtom215/thalassa/internal/models"
)

// GenerateReplay converts a voyage's recorded route into a time-scaled
// playback sequence.
//
// Each real position gets a time offset from the voyage departure and
// a replay offset divided by the speed multiplier. When gap
// interpolation is on, consecutive samples further apart than the
// configured threshold are bridged with synthetic points: coordinates
// and speed interpolate linearly, heading along the shorter angular
// path, and the points carry replay offsets but no real timestamp.
// REPLAY_STARTED and REPLAY_COMPLETED audit entries bracket the
// generation; REPLAY_STARTED is written even when the voyage has no
// position data to replay.
func (s *Service) GenerateReplay(ctx context.Context, voyageID int64, settings models.ReplaySettings, userID string) (*models.ReplayResult, error) {
	if settings.SpeedMultiplier <= 0 {
		return nil, ErrInvalidMultiplier
	}

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

	// Written before the empty check: a replay attempt against a voyage
	// with no data is still an access worth tracing.
	if err := s.trail.Record(ctx, audit.ActionReplayStarted, userID, nil, &voyageID,
		map[string]interface{}{
			"speed_multiplier": settings.SpeedMultiplier,
			"interpolate_gaps": settings.InterpolateGaps,
			"position_count":   len(positions),
		}); err != nil {
		return nil, err
	}

	if len(positions) == 0 {
		return nil, ErrNoPositionData
	}

	points := s.buildReplayPoints(summary, positions, settings)

	actualDuration := positions[len(positions)-1].Timestamp.Sub(positions[0].Timestamp).Seconds()
	var totalDistance float64
	for _, pt := range points {
		totalDistance += pt.DistanceFromPreviousNM
	}

	metadata := models.ReplayMetadata{
		TotalPositions:        len(points),
		ActualDurationSeconds: actualDuration,
		ReplayDurationSeconds: actualDuration / settings.SpeedMultiplier,
		TotalDistanceNM:       totalDistance,
	}
	if actualDuration > 0 {
		metadata.AverageSpeedKnots = totalDistance / (actualDuration / 3600)
	}

	result := &models.ReplayResult{
		Voyage:      *summary,
		Settings:    settings,
		Metadata:    metadata,
		Positions:   points,
		GeneratedAt: s.now(),
	}

	metrics.ReplaysGeneratedTotal.Inc()

	if err := s.trail.Record(ctx, audit.ActionReplayCompleted, userID, nil, &voyageID,
		map[string]interface{}{
			"total_positions":         metadata.TotalPositions,
			"actual_duration_seconds": metadata.ActualDurationSeconds,
			"replay_duration_seconds": metadata.ReplayDurationSeconds,
			"total_distance_nm":       metadata.TotalDistanceNM,
		}); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) buildReplayPoints(summary *models.VoyageSummary, positions []*models.Position, settings models.ReplaySettings) []models.ReplayPoint {
	departure := summary.DepartureTime
	points := make([]models.ReplayPoint, 0, len(positions))

	for i, p := range positions {
		offset := p.Timestamp.Sub(departure).Seconds()

		point := models.ReplayPoint{
			Latitude:          p.Latitude,
			Longitude:         p.Longitude,
			Speed:             p.Speed,
			Heading:           p.Heading,
			TimeOffsetSeconds: offset,
			ReplayTimeSeconds: offset / settings.SpeedMultiplier,
			Source:            p.Source,
		}
		ts := p.Timestamp
		point.Timestamp = &ts

		if i > 0 {
			prev := positions[i-1]
			point.DistanceFromPreviousNM = geo.HaversineNM(
				prev.Latitude, prev.Longitude, p.Latitude, p.Longitude)

			if settings.InterpolateGaps {
				gap := p.Timestamp.Sub(prev.Timestamp)
				if gap > s.cfg.InterpolationThreshold {
					synthetic := s.interpolateGap(prev, p, departure, settings.SpeedMultiplier)
					points = append(points, synthetic...)
					metrics.InterpolatedPointsTotal.Add(float64(len(synthetic)))
				}
			}
		}

		points = append(points, point)
	}

	return points
}

// interpolateGap bridges the gap between two real samples with evenly
// spaced synthetic points. A gap of n threshold intervals yields n-1
// inner points, so a two-hour gap at a 30 minute threshold inserts
// exactly three. Gaps between one and two intervals still get a single
// midpoint so any gap over the threshold is bridged. Synthetic points
// carry no real timestamp and keep DistanceFromPreviousNM at zero;
// distances along the route are accounted to the real endpoints.
func (s *Service) interpolateGap(prev, next *models.Position, departure time.Time, multiplier float64) []models.ReplayPoint {
	gap := next.Timestamp.Sub(prev.Timestamp)
	intervals := int(gap / s.cfg.InterpolationThreshold)
	if intervals < 1 {
		return nil
	}
	segments := intervals
	if segments < 2 {
		segments = 2
	}

	prevOffset := prev.Timestamp.Sub(departure).Seconds()
	nextOffset := next.Timestamp.Sub(departure).Seconds()

	points := make([]models.ReplayPoint, 0, segments-1)
	for i := 1; i < segments; i++ {
		ratio := float64(i) / float64(segments)

		point := models.ReplayPoint{
			Latitude:       geo.Lerp(prev.Latitude, next.Latitude, ratio),
			Longitude:      geo.Lerp(prev.Longitude, next.Longitude, ratio),
			Source:         models.PositionSourceInterpolated,
			IsInterpolated: true,
		}

		offset := geo.Lerp(prevOffset, nextOffset, ratio)
		point.TimeOffsetSeconds = offset
		point.ReplayTimeSeconds = offset / multiplier

		if prev.Speed != nil && next.Speed != nil {
			speed := geo.Lerp(*prev.Speed, *next.Speed, ratio)
			point.Speed = &speed
		}
		if prev.Heading != nil && next.Heading != nil {
			heading := int(geo.LerpHeading(float64(*prev.Heading), float64(*next.Heading), ratio))
			point.Heading = &heading
		}

		points = append(points, point)
	}
	return points
}
