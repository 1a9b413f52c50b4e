// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package geo provides great-circle geometry helpers for vessel positions.
package geo

import "math"

// EarthRadiusNM is the mean Earth radius in nautical miles.
const EarthRadiusNM = 3440.065

// HaversineNM returns the great-circle distance between two coordinates
// in nautical miles.
func HaversineNM(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return c * EarthRadiusNM
}

// Lerp linearly interpolates between a and b at fractional ratio t in [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpHeading interpolates between two headings (degrees) along the shorter
// angular path. The difference is normalized to (-180, 180] before scaling so
// that 350° → 10° takes the 20° short path, never the 340° long path.
// The result is normalized to [0, 360).
func LerpHeading(from, to float64, t float64) float64 {
	diff := to - from
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	h := math.Mod(from+diff*t, 360)
	if h < 0 {
		h += 360
	}
	return h
}
