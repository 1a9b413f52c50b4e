// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package models

import "time"

// Vessel represents a tracked ship.
//
// The LastPosition* fields are a denormalized cache of the most recent
// recorded position sample; the authoritative history lives in the
// positions table. The cache is updated inside the same transaction that
// inserts a new position.
type Vessel struct {
	ID         int64   `json:"id"`
	IMONumber  string  `json:"imo_number"`
	MMSI       *string `json:"mmsi,omitempty"`
	Name       string  `json:"name"`
	VesselType string  `json:"vessel_type"`
	Flag       string  `json:"flag"`
	CargoType  string  `json:"cargo_type"`
	Operator   string  `json:"operator"`

	// Cached last-known position state.
	LastPositionLat *float64  `json:"last_position_lat,omitempty"`
	LastPositionLon *float64  `json:"last_position_lon,omitempty"`
	Speed           *float64  `json:"speed,omitempty"`   // knots
	Heading         *int      `json:"heading,omitempty"` // degrees, 0-359
	LastUpdate      time.Time `json:"last_update"`
}

// Port represents a harbor referenced by voyages. The history subsystem
// only reads port names for route display metadata.
type Port struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Country  string `json:"country"`
}

// VesselSummary is the compact vessel representation embedded in
// history responses.
type VesselSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IMONumber  string `json:"imo_number"`
	VesselType string `json:"vessel_type"`
}

// Summary returns the compact representation of the vessel.
func (v *Vessel) Summary() VesselSummary {
	return VesselSummary{
		ID:         v.ID,
		Name:       v.Name,
		IMONumber:  v.IMONumber,
		VesselType: v.VesselType,
	}
}
