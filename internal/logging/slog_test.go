// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package logging

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	logger := NewSlogLogger()
	logger.Info("sweep complete",
		slog.Int64("deleted", 42),
		slog.Duration("elapsed", 3*time.Second))

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "sweep complete")
	assert.Contains(t, out, `"deleted":42`)
}

func TestSlogHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	logger := NewSlogLogger().WithGroup("supervisor")
	logger.Warn("service restarting", slog.String("service", "http-server"))

	assert.Contains(t, buf.String(), `"supervisor.service":"http-server"`)
}

func TestSlogHandler_LevelMapping(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf).Level(parseLevel("warn")))

	logger := NewSlogLogger()
	logger.Info("ignored")
	logger.Error("kept")

	out := buf.String()
	assert.NotContains(t, out, "ignored")
	assert.Contains(t, out, "kept")
}
