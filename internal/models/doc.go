// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package models defines the data structures used throughout Thalassa:
// vessels, ports, voyages, position samples, and the result types returned
// by the history service and HTTP API.
package models
