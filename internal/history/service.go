// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package history implements the voyage position history service:
// idempotent position recording with voyage association, route and
// statistics queries, time-scaled replay generation, and retention
// sweeps. All mutation paths write to the compliance audit trail.
package history

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/tomtom215/thalassa/internal/audit"
	"github.com/tomtom215/thalassa/internal/cache"
	"github.com/tomtom215/thalassa/internal/config"
	"github.com/tomtom215/thalassa/internal/models"
)

// summaryCacheTTL bounds staleness of cached voyage display metadata.
// Voyage status changes invalidate the key directly, so the TTL only
// covers out-of-band edits to vessel or port names.
const summaryCacheTTL = 30 * time.Second

// Sentinel errors surfaced to the API layer.
var (
	// ErrVesselNotFound is returned when the vessel does not exist.
	ErrVesselNotFound = errors.New("vessel not found")

	// ErrVoyageNotFound is returned when the voyage does not exist.
	ErrVoyageNotFound = errors.New("voyage not found")

	// ErrEmptyRoute is returned by statistics when the voyage has no
	// recorded positions.
	ErrEmptyRoute = errors.New("voyage has no recorded positions")

	// ErrNoPositionData is returned by replay generation when the
	// voyage has no real positions to replay.
	ErrNoPositionData = errors.New("no position data available for replay")

	// ErrInvalidMultiplier is returned when a replay is requested with
	// a non-positive speed multiplier.
	ErrInvalidMultiplier = errors.New("speed multiplier must be positive")
)

// VesselStore is the vessel persistence surface the service depends on.
// Implementations return an error matching database.ErrNotFound for
// missing rows.
type VesselStore interface {
	VesselByID(ctx context.Context, id int64) (*models.Vessel, error)
}

// VoyageStore is the voyage persistence surface the service depends on.
type VoyageStore interface {
	VoyageByID(ctx context.Context, id int64) (*models.Voyage, error)
	VoyageSummaryByID(ctx context.Context, id int64) (*models.VoyageSummary, error)
	InProgressVoyageAt(ctx context.Context, vesselID int64, ts time.Time) (*models.Voyage, error)
	PlannedVoyageDepartingBy(ctx context.Context, vesselID int64, deadline time.Time) (*models.Voyage, error)
	MarkVoyageInProgress(ctx context.Context, id int64) error
	CompleteVoyage(ctx context.Context, id int64, arrival time.Time) error
}

// PositionStore is the position persistence surface the service
// depends on. SavePosition must be atomic: duplicate check, insert,
// and vessel cache refresh in one transaction, resolving a concurrent
// duplicate insert as retrieval of the winning row.
type PositionStore interface {
	SavePosition(ctx context.Context, p *models.Position) (stored *models.Position, created bool, err error)
	VoyagePositions(ctx context.Context, voyageID int64, includeInterpolated bool) ([]*models.Position, error)
	VesselPositions(ctx context.Context, vesselID int64, start, end time.Time, limit int) ([]*models.Position, error)
	CountPositionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeletePositionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service is the voyage history service.
type Service struct {
	vessels   VesselStore
	voyages   VoyageStore
	positions PositionStore
	trail     *audit.Trail
	cfg       config.HistoryConfig
	summaries *cache.Cache
	now       func() time.Time
}

// NewService constructs the history service. The audit trail is
// required; pass a disabled trail to suppress entries.
func NewService(vessels VesselStore, voyages VoyageStore, positions PositionStore, trail *audit.Trail, cfg config.HistoryConfig) *Service {
	return &Service{
		vessels:   vessels,
		voyages:   voyages,
		positions: positions,
		trail:     trail,
		cfg:       cfg,
		summaries: cache.New(summaryCacheTTL),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// voyageSummary resolves display metadata for a voyage through the
// summary cache.
func (s *Service) voyageSummary(ctx context.Context, voyageID int64) (*models.VoyageSummary, error) {
	key := summaryCacheKey(voyageID)
	if v, ok := s.summaries.Get(key); ok {
		return v.(*models.VoyageSummary), nil
	}
	summary, err := s.voyages.VoyageSummaryByID(ctx, voyageID)
	if err != nil {
		return nil, err
	}
	s.summaries.Set(key, summary)
	return summary, nil
}

func summaryCacheKey(voyageID int64) string {
	return "voyage-summary:" + strconv.FormatInt(voyageID, 10)
}
