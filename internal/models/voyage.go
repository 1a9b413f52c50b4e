// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package models

import "time"

// VoyageStatus is the lifecycle state of a voyage.
//
// Valid transitions: Planned → InProgress → {Completed, Cancelled}.
// Positions are only ever associated with an InProgress voyage; the
// associator may auto-promote a Planned voyage whose departure falls
// inside the configured grace window.
type VoyageStatus string

const (
	VoyageStatusPlanned    VoyageStatus = "PLANNED"
	VoyageStatusInProgress VoyageStatus = "IN_PROGRESS"
	VoyageStatusCompleted  VoyageStatus = "COMPLETED"
	VoyageStatusCancelled  VoyageStatus = "CANCELLED"
)

// Voyage represents a vessel's journey between two ports.
type Voyage struct {
	ID            int64        `json:"id"`
	VesselID      int64        `json:"vessel_id"`
	PortFromID    int64        `json:"port_from_id"`
	PortToID      int64        `json:"port_to_id"`
	DepartureTime time.Time    `json:"departure_time"`
	ArrivalTime   *time.Time   `json:"arrival_time,omitempty"`
	Status        VoyageStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Contains reports whether ts falls inside the voyage's active window:
// departure ≤ ts and (arrival unset or arrival ≥ ts).
func (v *Voyage) Contains(ts time.Time) bool {
	if ts.Before(v.DepartureTime) {
		return false
	}
	if v.ArrivalTime != nil && v.ArrivalTime.Before(ts) {
		return false
	}
	return true
}

// VoyageSummary is the display representation of a voyage embedded in
// route, history, and replay responses. Port names are resolved from the
// ports table at query time.
type VoyageSummary struct {
	ID            int64        `json:"id"`
	VesselName    string       `json:"vessel_name,omitempty"`
	PortFrom      string       `json:"port_from"`
	PortTo        string       `json:"port_to"`
	DepartureTime time.Time    `json:"departure_time"`
	ArrivalTime   *time.Time   `json:"arrival_time,omitempty"`
	Status        VoyageStatus `json:"status"`
}
