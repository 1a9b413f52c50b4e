// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package database

import (
	"context"
	"fmt"
	"time"
)

// createSequences creates the ID sequences used by table defaults.
// DuckDB has no auto-increment columns; sequences are the supported way
// to generate surrogate keys.
func (db *DB) createSequences() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()

	sequences := []string{
		"CREATE SEQUENCE IF NOT EXISTS seq_vessel_id START 1",
		"CREATE SEQUENCE IF NOT EXISTS seq_port_id START 1",
		"CREATE SEQUENCE IF NOT EXISTS seq_voyage_id START 1",
		"CREATE SEQUENCE IF NOT EXISTS seq_position_id START 1",
	}

	for _, stmt := range sequences {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create sequence: %w", err)
		}
	}
	return nil
}

func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tables := []string{
		`CREATE TABLE IF NOT EXISTS vessels (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_vessel_id'),
			imo_number VARCHAR NOT NULL UNIQUE,
			mmsi VARCHAR,
			name VARCHAR NOT NULL,
			vessel_type VARCHAR NOT NULL DEFAULT '',
			flag VARCHAR NOT NULL DEFAULT '',
			cargo_type VARCHAR NOT NULL DEFAULT '',
			operator VARCHAR NOT NULL DEFAULT '',
			last_position_lat DOUBLE,
			last_position_lon DOUBLE,
			speed DOUBLE,
			heading INTEGER,
			last_update TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS ports (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_port_id'),
			name VARCHAR NOT NULL,
			location VARCHAR NOT NULL DEFAULT '',
			country VARCHAR NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS voyages (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_voyage_id'),
			vessel_id BIGINT NOT NULL,
			port_from_id BIGINT NOT NULL,
			port_to_id BIGINT NOT NULL,
			departure_time TIMESTAMP NOT NULL,
			arrival_time TIMESTAMP,
			status VARCHAR NOT NULL DEFAULT 'PLANNED',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS positions (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_position_id'),
			vessel_id BIGINT NOT NULL,
			voyage_id BIGINT,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			speed DOUBLE,
			heading INTEGER,
			ts TIMESTAMP NOT NULL,
			source VARCHAR NOT NULL DEFAULT 'AIS',
			accuracy DOUBLE,
			is_interpolated BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (vessel_id, ts)
		)`,
	}

	for _, stmt := range tables {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (db *DB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_vessels_imo ON vessels (imo_number)",
		"CREATE INDEX IF NOT EXISTS idx_vessels_mmsi ON vessels (mmsi)",
		"CREATE INDEX IF NOT EXISTS idx_vessels_last_update ON vessels (last_update)",
		"CREATE INDEX IF NOT EXISTS idx_voyages_vessel_status ON voyages (vessel_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_voyages_departure ON voyages (departure_time)",
		"CREATE INDEX IF NOT EXISTS idx_positions_vessel_ts ON positions (vessel_id, ts)",
		"CREATE INDEX IF NOT EXISTS idx_positions_voyage_ts ON positions (voyage_id, ts)",
		"CREATE INDEX IF NOT EXISTS idx_positions_ts ON positions (ts)",
	}

	for _, stmt := range indexes {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
