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

const positionColumns = `id, vessel_id, voyage_id, latitude, longitude, speed, heading,
	ts, source, accuracy, is_interpolated, created_at`

func scanPosition(row interface{ Scan(...any) error }) (*models.Position, error) {
	var p models.Position
	var voyageID sql.NullInt64
	var speed, accuracy sql.NullFloat64
	var heading sql.NullInt32

	err := row.Scan(&p.ID, &p.VesselID, &voyageID, &p.Latitude, &p.Longitude,
		&speed, &heading, &p.Timestamp, &p.Source, &accuracy, &p.IsInterpolated, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan position: %w", err)
	}

	if voyageID.Valid {
		p.VoyageID = &voyageID.Int64
	}
	if speed.Valid {
		p.Speed = &speed.Float64
	}
	if heading.Valid {
		h := int(heading.Int32)
		p.Heading = &h
	}
	if accuracy.Valid {
		p.Accuracy = &accuracy.Float64
	}
	return &p, nil
}

// SavePosition stores a position sample with first-write-wins
// semantics on (vessel_id, timestamp). If a sample already exists for
// that pair, the stored sample is returned and created is false; the
// incoming data is discarded. The duplicate check, insert, and vessel
// position cache refresh run inside a single transaction.
func (db *DB) SavePosition(ctx context.Context, p *models.Position) (stored *models.Position, created bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	existing, err := positionAtTx(ctx, tx, p.VesselID, p.Timestamp)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if existing != nil {
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return existing, false, nil
	}

	now := time.Now().UTC()
	insertErr := tx.QueryRowContext(ctx,
		`INSERT INTO positions (vessel_id, voyage_id, latitude, longitude, speed, heading,
			ts, source, accuracy, is_interpolated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		p.VesselID, p.VoyageID, p.Latitude, p.Longitude, p.Speed, p.Heading,
		p.Timestamp, p.Source, p.Accuracy, p.IsInterpolated, now,
	).Scan(&p.ID)

	if insertErr != nil {
		// A concurrent writer won the race for this (vessel, timestamp)
		// pair. Resolve the conflict as a retrieval of their sample.
		if isUniqueViolation(insertErr) {
			rollbackQuietly(tx)
			existing, err := db.PositionAt(ctx, p.VesselID, p.Timestamp)
			if err != nil {
				return nil, false, fmt.Errorf("failed to load winning position after conflict: %w", err)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to insert position: %w", insertErr)
	}
	p.CreatedAt = now

	// Refresh the vessel's cached latest position only when this sample
	// is newer than the cache.
	if !p.IsInterpolated {
		_, err = tx.ExecContext(ctx,
			`UPDATE vessels SET last_position_lat = ?, last_position_lon = ?,
				speed = ?, heading = ?, last_update = ?
			WHERE id = ? AND last_update <= ?`,
			p.Latitude, p.Longitude, p.Speed, p.Heading, p.Timestamp,
			p.VesselID, p.Timestamp)
		if err != nil {
			return nil, false, fmt.Errorf("failed to refresh vessel position cache: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return p, true, nil
}

func positionAtTx(ctx context.Context, tx *sql.Tx, vesselID int64, ts time.Time) (*models.Position, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE vessel_id = ? AND ts = ?",
		vesselID, ts)
	return scanPosition(row)
}

// PositionAt returns the position sample for the vessel at the exact
// timestamp, or ErrNotFound.
func (db *DB) PositionAt(ctx context.Context, vesselID int64, ts time.Time) (*models.Position, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE vessel_id = ? AND ts = ?",
		vesselID, ts)
	return scanPosition(row)
}

// VoyagePositions returns the voyage's positions in chronological
// order. Interpolated samples are excluded unless requested.
func (db *DB) VoyagePositions(ctx context.Context, voyageID int64, includeInterpolated bool) ([]*models.Position, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := "SELECT " + positionColumns + " FROM positions WHERE voyage_id = ?"
	args := []any{voyageID}
	if !includeInterpolated {
		query += " AND is_interpolated = false"
	}
	query += " ORDER BY ts ASC"

	return db.queryPositions(ctx, query, args...)
}

// VesselPositions returns the vessel's positions within [start, end]
// in chronological order, capped at limit rows.
func (db *DB) VesselPositions(ctx context.Context, vesselID int64, start, end time.Time, limit int) ([]*models.Position, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := "SELECT " + positionColumns + ` FROM positions
		WHERE vessel_id = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
		LIMIT ?`

	return db.queryPositions(ctx, query, vesselID, start, end, limit)
}

func (db *DB) queryPositions(ctx context.Context, query string, args ...any) ([]*models.Position, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer closeWithLog(rows, "positions rows")

	var positions []*models.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// CountPositionsBefore counts position samples older than the cutoff.
func (db *DB) CountPositionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM positions WHERE ts < ?", cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count positions before %s: %w", cutoff, err)
	}
	return count, nil
}

// DeletePositionsBefore removes position samples older than the cutoff
// and returns the number of rows deleted.
func (db *DB) DeletePositionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, "DELETE FROM positions WHERE ts < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete positions before %s: %w", cutoff, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}
	return deleted, nil
}
