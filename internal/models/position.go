// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package models

import "time"

// PositionSourceInterpolated tags synthetic points generated by the replay
// gap interpolator. Interpolated points are never ground-truth observations.
const PositionSourceInterpolated = "INTERPOLATED"

// Position is a single timestamped vessel position sample.
//
// Positions are immutable once created and unique per (vessel, timestamp);
// a duplicate recording resolves to the existing row (first write wins).
// VoyageID is nil when no voyage was active at the sample's timestamp.
type Position struct {
	ID             int64     `json:"id"`
	VesselID       int64     `json:"vessel_id"`
	VoyageID       *int64    `json:"voyage_id,omitempty"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Speed          *float64  `json:"speed,omitempty"`    // knots
	Heading        *int      `json:"heading,omitempty"`  // degrees, 0-359
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`
	Accuracy       *float64  `json:"accuracy,omitempty"` // meters
	IsInterpolated bool      `json:"is_interpolated"`
	CreatedAt      time.Time `json:"created_at"`
}

// RoutePoint is a position as rendered in route and history responses.
type RoutePoint struct {
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Speed          *float64   `json:"speed"`
	Heading        *int       `json:"heading"`
	Timestamp      *time.Time `json:"timestamp"`
	Source         string     `json:"source"`
	Accuracy       *float64   `json:"accuracy"`
	IsInterpolated bool       `json:"is_interpolated"`
	VoyageID       *int64     `json:"voyage_id,omitempty"`
}

// NewPositionParams carries the caller-supplied fields for recording a
// position sample. Coordinates and heading ranges are validated at the API
// boundary before this struct reaches the history service.
type NewPositionParams struct {
	Latitude  float64   `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64   `json:"longitude" validate:"min=-180,max=180"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Speed     *float64  `json:"speed,omitempty" validate:"omitempty,min=0"`
	Heading   *int      `json:"heading,omitempty" validate:"omitempty,min=0,max=359"`
	Source    string    `json:"source,omitempty"`
	Accuracy  *float64  `json:"accuracy,omitempty" validate:"omitempty,min=0"`
}
