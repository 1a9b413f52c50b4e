// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/thalassa/internal/models"
)

const voyageColumns = `id, vessel_id, port_from_id, port_to_id, departure_time,
	arrival_time, status, created_at, updated_at`

func scanVoyage(row interface{ Scan(...any) error }) (*models.Voyage, error) {
	var v models.Voyage
	var arrival sql.NullTime
	var status string

	err := row.Scan(&v.ID, &v.VesselID, &v.PortFromID, &v.PortToID,
		&v.DepartureTime, &arrival, &status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan voyage: %w", err)
	}

	if arrival.Valid {
		v.ArrivalTime = &arrival.Time
	}
	v.Status = models.VoyageStatus(status)
	return &v, nil
}

// CreateVoyage inserts a new voyage and returns it with the generated ID.
func (db *DB) CreateVoyage(ctx context.Context, v *models.Voyage) (*models.Voyage, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	if v.Status == "" {
		v.Status = models.VoyageStatusPlanned
	}

	query := `INSERT INTO voyages (vessel_id, port_from_id, port_to_id, departure_time,
		arrival_time, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`

	err := db.conn.QueryRowContext(ctx, query,
		v.VesselID, v.PortFromID, v.PortToID, v.DepartureTime,
		v.ArrivalTime, string(v.Status), now, now,
	).Scan(&v.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create voyage: %w", err)
	}
	v.CreatedAt = now
	v.UpdatedAt = now
	return v, nil
}

// VoyageByID returns the voyage with the given ID, or ErrNotFound.
func (db *DB) VoyageByID(ctx context.Context, id int64) (*models.Voyage, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		"SELECT "+voyageColumns+" FROM voyages WHERE id = ?", id)
	return scanVoyage(row)
}

// VoyageSummaryByID returns a display summary joining vessel and port
// names, or ErrNotFound.
func (db *DB) VoyageSummaryByID(ctx context.Context, id int64) (*models.VoyageSummary, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT v.id, ves.name, pf.name, pt.name, v.departure_time, v.arrival_time, v.status
		FROM voyages v
		JOIN vessels ves ON ves.id = v.vessel_id
		JOIN ports pf ON pf.id = v.port_from_id
		JOIN ports pt ON pt.id = v.port_to_id
		WHERE v.id = ?`

	var s models.VoyageSummary
	var arrival sql.NullTime
	var status string
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.VesselName, &s.PortFrom, &s.PortTo, &s.DepartureTime, &arrival, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query voyage summary %d: %w", id, err)
	}
	if arrival.Valid {
		s.ArrivalTime = &arrival.Time
	}
	s.Status = models.VoyageStatus(status)
	return &s, nil
}

// InProgressVoyageAt returns the in-progress voyage for the vessel
// whose time window contains ts. When several overlap, the one with the
// most recent departure wins. Returns ErrNotFound when none match.
func (db *DB) InProgressVoyageAt(ctx context.Context, vesselID int64, ts time.Time) (*models.Voyage, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT ` + voyageColumns + ` FROM voyages
		WHERE vessel_id = ? AND status = ?
		  AND departure_time <= ?
		  AND (arrival_time IS NULL OR arrival_time >= ?)
		ORDER BY departure_time DESC
		LIMIT 1`

	row := db.conn.QueryRowContext(ctx, query,
		vesselID, string(models.VoyageStatusInProgress), ts, ts)
	return scanVoyage(row)
}

// PlannedVoyageDepartingBy returns the planned voyage for the vessel
// with the earliest departure at or before the deadline, or ErrNotFound.
func (db *DB) PlannedVoyageDepartingBy(ctx context.Context, vesselID int64, deadline time.Time) (*models.Voyage, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT ` + voyageColumns + ` FROM voyages
		WHERE vessel_id = ? AND status = ? AND departure_time <= ?
		ORDER BY departure_time ASC
		LIMIT 1`

	row := db.conn.QueryRowContext(ctx, query,
		vesselID, string(models.VoyageStatusPlanned), deadline)
	return scanVoyage(row)
}

// MarkVoyageInProgress transitions a voyage to the in-progress status.
func (db *DB) MarkVoyageInProgress(ctx context.Context, id int64) error {
	return db.setVoyageStatus(ctx, id, models.VoyageStatusInProgress)
}

// CompleteVoyage transitions a voyage to the completed status and
// records its arrival time.
func (db *DB) CompleteVoyage(ctx context.Context, id int64, arrival time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		"UPDATE voyages SET status = ?, arrival_time = ?, updated_at = ? WHERE id = ?",
		string(models.VoyageStatusCompleted), arrival, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete voyage %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) setVoyageStatus(ctx context.Context, id int64, status models.VoyageStatus) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		"UPDATE voyages SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set voyage %d status to %s: %w", id, status, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
