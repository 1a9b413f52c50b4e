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

const vesselColumns = `id, imo_number, mmsi, name, vessel_type, flag, cargo_type, operator,
	last_position_lat, last_position_lon, speed, heading, last_update`

// scannedVesselData holds nullable columns during row scanning before
// conversion to the models.Vessel pointer fields.
type scannedVesselData struct {
	mmsi    sql.NullString
	lat     sql.NullFloat64
	lon     sql.NullFloat64
	speed   sql.NullFloat64
	heading sql.NullInt32
}

func scanVessel(row interface{ Scan(...any) error }) (*models.Vessel, error) {
	var v models.Vessel
	var sd scannedVesselData

	err := row.Scan(&v.ID, &v.IMONumber, &sd.mmsi, &v.Name, &v.VesselType, &v.Flag,
		&v.CargoType, &v.Operator, &sd.lat, &sd.lon, &sd.speed, &sd.heading, &v.LastUpdate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan vessel: %w", err)
	}

	if sd.mmsi.Valid {
		v.MMSI = &sd.mmsi.String
	}
	if sd.lat.Valid {
		v.LastPositionLat = &sd.lat.Float64
	}
	if sd.lon.Valid {
		v.LastPositionLon = &sd.lon.Float64
	}
	if sd.speed.Valid {
		v.Speed = &sd.speed.Float64
	}
	if sd.heading.Valid {
		h := int(sd.heading.Int32)
		v.Heading = &h
	}
	return &v, nil
}

// CreateVessel inserts a new vessel and returns it with the generated ID.
func (db *DB) CreateVessel(ctx context.Context, v *models.Vessel) (*models.Vessel, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `INSERT INTO vessels (imo_number, mmsi, name, vessel_type, flag, cargo_type, operator, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`

	lastUpdate := v.LastUpdate
	if lastUpdate.IsZero() {
		lastUpdate = time.Now().UTC()
	}

	err := db.conn.QueryRowContext(ctx, query,
		v.IMONumber, v.MMSI, v.Name, v.VesselType, v.Flag, v.CargoType, v.Operator, lastUpdate,
	).Scan(&v.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create vessel %s: %w", v.IMONumber, err)
	}
	v.LastUpdate = lastUpdate
	return v, nil
}

// VesselByID returns the vessel with the given ID, or ErrNotFound.
func (db *DB) VesselByID(ctx context.Context, id int64) (*models.Vessel, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		"SELECT "+vesselColumns+" FROM vessels WHERE id = ?", id)
	return scanVessel(row)
}

// VesselByIMO returns the vessel with the given IMO number, or ErrNotFound.
func (db *DB) VesselByIMO(ctx context.Context, imo string) (*models.Vessel, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		"SELECT "+vesselColumns+" FROM vessels WHERE imo_number = ?", imo)
	return scanVessel(row)
}

// VesselByMMSI returns the vessel with the given MMSI, or ErrNotFound.
func (db *DB) VesselByMMSI(ctx context.Context, mmsi string) (*models.Vessel, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		"SELECT "+vesselColumns+" FROM vessels WHERE mmsi = ?", mmsi)
	return scanVessel(row)
}

// UpdateVessel updates the mutable identity fields of a vessel.
func (db *DB) UpdateVessel(ctx context.Context, v *models.Vessel) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `UPDATE vessels SET mmsi = ?, name = ?, vessel_type = ?, flag = ?,
		cargo_type = ?, operator = ?, last_update = ? WHERE id = ?`

	res, err := db.conn.ExecContext(ctx, query,
		v.MMSI, v.Name, v.VesselType, v.Flag, v.CargoType, v.Operator, v.LastUpdate, v.ID)
	if err != nil {
		return fmt.Errorf("failed to update vessel %d: %w", v.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// StaleVessels returns vessels whose cached position has not been
// refreshed since the cutoff, ordered oldest first.
func (db *DB) StaleVessels(ctx context.Context, cutoff time.Time) ([]*models.Vessel, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+vesselColumns+" FROM vessels WHERE last_update < ? ORDER BY last_update ASC", cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale vessels: %w", err)
	}
	defer closeWithLog(rows, "stale vessels rows")

	var vessels []*models.Vessel
	for rows.Next() {
		v, err := scanVessel(rows)
		if err != nil {
			return nil, err
		}
		vessels = append(vessels, v)
	}
	return vessels, rows.Err()
}
