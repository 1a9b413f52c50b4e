// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package geo

import (
	"math"
	"testing"
)

func TestHaversineNM(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 25.0, lon1: 55.0, lat2: 25.0, lon2: 55.0,
			want: 0, tolerance: 1e-9,
		},
		{
			name: "dubai coastal offset",
			lat1: 25.2048, lon1: 55.2708, lat2: 25.4, lon2: 55.5,
			want: 17.09, tolerance: 0.05,
		},
		{
			name: "one degree of latitude is sixty nautical miles",
			lat1: 0, lon1: 0, lat2: 1, lon2: 0,
			want: 60.04, tolerance: 0.1,
		},
		{
			name: "antimeridian crossing",
			lat1: 0, lon1: 179.5, lat2: 0, lon2: -179.5,
			want: 60.04, tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineNM(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineNM() = %v, want %v ± %v", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversineNM_Symmetric(t *testing.T) {
	ab := HaversineNM(25.2048, 55.2708, 25.4, 55.5)
	ba := HaversineNM(25.4, 55.5, 25.2048, 55.2708)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(10, 20, 0.5); got != 15 {
		t.Errorf("Lerp(10, 20, 0.5) = %v, want 15", got)
	}
	if got := Lerp(10, 20, 0); got != 10 {
		t.Errorf("Lerp(10, 20, 0) = %v, want 10", got)
	}
	if got := Lerp(10, 20, 1); got != 20 {
		t.Errorf("Lerp(10, 20, 1) = %v, want 20", got)
	}
}

func TestLerpHeading(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		t        float64
		want     float64
	}{
		{name: "no wraparound", from: 10, to: 30, t: 0.5, want: 20},
		{name: "wraparound short path forward", from: 350, to: 10, t: 0.5, want: 0},
		{name: "wraparound short path backward", from: 10, to: 350, t: 0.5, want: 0},
		{name: "wraparound quarter", from: 350, to: 10, t: 0.25, want: 355},
		{name: "wraparound three quarters", from: 350, to: 10, t: 0.75, want: 5},
		{name: "opposite headings stay on the positive side", from: 0, to: 180, t: 0.5, want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LerpHeading(tt.from, tt.to, tt.t)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LerpHeading(%v, %v, %v) = %v, want %v", tt.from, tt.to, tt.t, got, tt.want)
			}
		})
	}
}

func TestLerpHeading_NeverTakesLongPath(t *testing.T) {
	// A 350° → 10° sweep must stay within 20° of travel at every ratio.
	for _, ratio := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		got := LerpHeading(350, 10, ratio)
		// Valid results lie in [350, 360) ∪ [0, 10].
		if !(got >= 350 || got <= 10) {
			t.Errorf("LerpHeading(350, 10, %v) = %v, took the long path", ratio, got)
		}
	}
}
