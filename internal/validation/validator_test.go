// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/thalassa/internal/models"
)

func TestValidateStruct_PositionParams(t *testing.T) {
	valid := models.NewPositionParams{
		Latitude:  25.2048,
		Longitude: 55.2708,
		Timestamp: time.Now().UTC(),
	}
	assert.NoError(t, ValidateStruct(&valid))

	tests := []struct {
		name   string
		mutate func(*models.NewPositionParams)
		field  string
	}{
		{"latitude too high", func(p *models.NewPositionParams) { p.Latitude = 91 }, "Latitude"},
		{"latitude too low", func(p *models.NewPositionParams) { p.Latitude = -91 }, "Latitude"},
		{"longitude too high", func(p *models.NewPositionParams) { p.Longitude = 181 }, "Longitude"},
		{"longitude too low", func(p *models.NewPositionParams) { p.Longitude = -181 }, "Longitude"},
		{"missing timestamp", func(p *models.NewPositionParams) { p.Timestamp = time.Time{} }, "Timestamp"},
		{"heading out of range", func(p *models.NewPositionParams) { h := 360; p.Heading = &h }, "Heading"},
		{"negative speed", func(p *models.NewPositionParams) { s := -1.0; p.Speed = &s }, "Speed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)

			err := ValidateStruct(&params)
			require.Error(t, err)

			verrs, ok := err.(*ValidationErrors)
			require.True(t, ok, "expected *ValidationErrors, got %T", err)
			require.NotEmpty(t, verrs.Errors)
			assert.Equal(t, tt.field, verrs.Errors[0].Field())
			assert.Contains(t, verrs.Details(), tt.field)
		})
	}
}

func TestValidateStruct_BoundaryValues(t *testing.T) {
	// Extremes of the valid ranges pass.
	h := 359
	params := models.NewPositionParams{
		Latitude:  -90,
		Longitude: 180,
		Timestamp: time.Now().UTC(),
		Heading:   &h,
	}
	assert.NoError(t, ValidateStruct(&params))
}
