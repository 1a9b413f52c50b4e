// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package tracking ingests AIS position reports: it normalizes raw
// feed records, upserts vessel identities by IMO then MMSI, and hands
// position samples to the history service.
package tracking

import (
	"strings"
	"time"
)

// unknownField substitutes for absent identity fields in AIS feeds.
const unknownField = "Unknown"

// maxPlausibleSpeedKnots caps reported speeds; AIS feeds occasionally
// carry garbage values an order of magnitude too high.
const maxPlausibleSpeedKnots = 100

// Report is a raw AIS position report as received from a feed.
type Report struct {
	IMO        string    `json:"imo"`
	MMSI       string    `json:"mmsi"`
	Name       string    `json:"name"`
	VesselType string    `json:"vessel_type"`
	Flag       string    `json:"flag"`
	CargoType  string    `json:"cargo_type"`
	Operator   string    `json:"operator"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      float64   `json:"speed"`
	Heading    int       `json:"heading"`
	Timestamp  time.Time `json:"timestamp"`
}

// NormalizedReport is a report after field cleaning. Position fields
// are nil when the raw values were out of range.
type NormalizedReport struct {
	IMO        string
	MMSI       string
	Name       string
	VesselType string
	Flag       string
	CargoType  string
	Operator   string
	Latitude   *float64
	Longitude  *float64
	Speed      *float64
	Heading    *int
	Timestamp  time.Time
}

// Normalize cleans a raw report: identity strings are trimmed with
// unknowns substituted, out-of-range and null-island coordinates are
// dropped, speed is clamped to a plausible range, and heading is
// reduced modulo 360. A missing timestamp defaults to now.
func Normalize(r Report, now time.Time) NormalizedReport {
	n := NormalizedReport{
		IMO:        strings.TrimSpace(r.IMO),
		MMSI:       strings.TrimSpace(r.MMSI),
		Name:       defaultString(r.Name, unknownField+" Vessel"),
		VesselType: defaultString(r.VesselType, unknownField),
		Flag:       defaultString(r.Flag, unknownField),
		CargoType:  defaultString(r.CargoType, unknownField),
		Operator:   defaultString(r.Operator, unknownField),
		Timestamp:  r.Timestamp,
	}

	// (0, 0) is the AIS no-fix sentinel, not a real coordinate pair.
	atNullIsland := r.Latitude == 0 && r.Longitude == 0
	if !atNullIsland && r.Latitude >= -90 && r.Latitude <= 90 && r.Longitude >= -180 && r.Longitude <= 180 {
		lat, lon := r.Latitude, r.Longitude
		n.Latitude = &lat
		n.Longitude = &lon
	}

	speed := r.Speed
	if speed < 0 {
		speed = 0
	}
	if speed > maxPlausibleSpeedKnots {
		speed = maxPlausibleSpeedKnots
	}
	n.Speed = &speed

	heading := ((r.Heading % 360) + 360) % 360
	n.Heading = &heading

	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}
	n.Timestamp = n.Timestamp.UTC()

	return n
}

func defaultString(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
