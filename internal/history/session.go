// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/thalassa/internal/audit"
	"github.com/tomtom215/thalassa/internal/database"
	"github.com/tomtom215/thalassa/internal/models"
)

// ErrFrameOutOfRange is returned when a replay frame index falls
// outside the voyage's recorded route.
var ErrFrameOutOfRange = errors.New("replay frame index out of range")

// CreateReplaySession allocates a session handle for a client-driven
// replay of the voyage and records its creation on the audit trail.
// The handle is opaque; clients pass it back in subsequent frame
// requests for correlation.
func (s *Service) CreateReplaySession(ctx context.Context, voyageID int64, settings models.ReplaySettings, userID string) (string, error) {
	voyage, err := s.voyages.VoyageByID(ctx, voyageID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrVoyageNotFound
		}
		return "", fmt.Errorf("failed to load voyage %d: %w", voyageID, err)
	}

	sessionID := uuid.NewString()
	details := map[string]interface{}{
		"session_id":       sessionID,
		"speed_multiplier": settings.SpeedMultiplier,
		"interpolate_gaps": settings.InterpolateGaps,
	}
	if err := s.trail.Record(ctx, audit.ActionReplayStarted, userID, &voyage.VesselID, &voyageID, details); err != nil {
		return "", err
	}

	return sessionID, nil
}

// ReplayFrame returns one indexed frame of the voyage's recorded
// route. Frames index real samples only; interpolated points never
// appear. Returns ErrFrameOutOfRange for indexes outside the route.
func (s *Service) ReplayFrame(ctx context.Context, voyageID int64, frameIndex int) (*models.ReplayFrame, error) {
	if _, err := s.voyages.VoyageByID(ctx, voyageID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrVoyageNotFound
		}
		return nil, fmt.Errorf("failed to load voyage %d: %w", voyageID, err)
	}

	positions, err := s.positions.VoyagePositions(ctx, voyageID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load voyage %d positions: %w", voyageID, err)
	}
	if frameIndex < 0 || frameIndex >= len(positions) {
		return nil, ErrFrameOutOfRange
	}

	p := positions[frameIndex]
	return &models.ReplayFrame{
		FrameIndex: frameIndex,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Speed:      p.Speed,
		Heading:    p.Heading,
		Timestamp:  p.Timestamp,
		Source:     p.Source,
	}, nil
}
