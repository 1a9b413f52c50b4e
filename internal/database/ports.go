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

	"github.com/tomtom215/thalassa/internal/models"
)

// CreatePort inserts a new port and returns it with the generated ID.
func (db *DB) CreatePort(ctx context.Context, p *models.Port) (*models.Port, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err := db.conn.QueryRowContext(ctx,
		"INSERT INTO ports (name, location, country) VALUES (?, ?, ?) RETURNING id",
		p.Name, p.Location, p.Country,
	).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create port %s: %w", p.Name, err)
	}
	return p, nil
}

// PortByID returns the port with the given ID, or ErrNotFound.
func (db *DB) PortByID(ctx context.Context, id int64) (*models.Port, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var p models.Port
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, name, location, country FROM ports WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Location, &p.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query port %d: %w", id, err)
	}
	return &p, nil
}

// ListPorts returns all ports ordered by name.
func (db *DB) ListPorts(ctx context.Context) ([]*models.Port, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, name, location, country FROM ports ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}
	defer closeWithLog(rows, "ports rows")

	var ports []*models.Port
	for rows.Next() {
		var p models.Port
		if err := rows.Scan(&p.ID, &p.Name, &p.Location, &p.Country); err != nil {
			return nil, fmt.Errorf("failed to scan port: %w", err)
		}
		ports = append(ports, &p)
	}
	return ports, rows.Err()
}
