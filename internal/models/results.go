// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package models

import "time"

// RouteResult is the ordered position sequence for one voyage.
type RouteResult struct {
	Voyage VoyageSummary `json:"voyage"`
	Points []RoutePoint  `json:"points"`
}

// HistoryResult is a vessel's position history over a time range, capped
// at the requested limit and grouped by voyage for the caller's convenience.
//
// HasMore is true iff the returned count equals the limit, signalling
// possible truncation; it never inspects rows beyond the cap.
type HistoryResult struct {
	Vessel         VesselSummary             `json:"vessel"`
	Start          time.Time                 `json:"start"`
	End            time.Time                 `json:"end"`
	Positions      []RoutePoint              `json:"positions"`
	Voyages        map[int64]*VoyageSummary  `json:"voyages"`
	TotalPositions int                       `json:"total_positions"`
	HasMore        bool                      `json:"has_more"`
}

// StatisticsResult carries aggregate statistics for one voyage.
//
// Speed aggregates are computed over recorded (non-null) speed values only.
// When no sample carries a speed, the three speed fields are zero and
// HasSpeedData is false; this is a documented degenerate case, not an error.
type StatisticsResult struct {
	VoyageID   int64        `json:"voyage_id"`
	VesselName string       `json:"vessel_name"`
	Route      string       `json:"route"`
	Status     VoyageStatus `json:"status"`

	TotalPositions    int        `json:"total_positions"`
	TotalDistanceNM   float64    `json:"total_distance_nm"`
	DurationHours     float64    `json:"duration_hours"`
	AverageSpeedKnots float64    `json:"average_speed_knots"`
	MaxSpeedKnots     float64    `json:"max_speed_knots"`
	MinSpeedKnots     float64    `json:"min_speed_knots"`
	HasSpeedData      bool       `json:"has_speed_data"`
	FirstPositionTime *time.Time `json:"first_position_time"`
	LastPositionTime  *time.Time `json:"last_position_time"`
}

// ReplayPoint is one frame of a time-scaled replay sequence.
//
// For synthetic (interpolated) points Timestamp is nil: only the
// replay-relative offsets are meaningful, and DistanceFromPreviousNM is
// left at zero rather than recomputed against synthetic neighbors.
type ReplayPoint struct {
	Latitude               float64    `json:"latitude"`
	Longitude              float64    `json:"longitude"`
	Speed                  *float64   `json:"speed"`
	Heading                *int       `json:"heading"`
	Timestamp              *time.Time `json:"timestamp"`
	TimeOffsetSeconds      float64    `json:"time_offset_seconds"`
	ReplayTimeSeconds      float64    `json:"replay_time_seconds"`
	DistanceFromPreviousNM float64    `json:"distance_from_previous_nm"`
	Source                 string     `json:"source"`
	IsInterpolated         bool       `json:"is_interpolated"`
}

// ReplaySettings echoes the parameters a replay was generated with.
type ReplaySettings struct {
	SpeedMultiplier float64 `json:"speed_multiplier"`
	InterpolateGaps bool    `json:"interpolate_gaps"`
}

// ReplayMetadata summarizes a generated replay sequence. Durations are
// derived from real (non-interpolated) first/last samples; the replay
// duration is the actual duration divided by the speed multiplier.
type ReplayMetadata struct {
	TotalPositions        int     `json:"total_positions"`
	ActualDurationSeconds float64 `json:"actual_duration_seconds"`
	ReplayDurationSeconds float64 `json:"replay_duration_seconds"`
	TotalDistanceNM       float64 `json:"total_distance_nm"`
	AverageSpeedKnots     float64 `json:"average_speed_knots"`
}

// ReplayResult is the full package returned to replay consumers.
type ReplayResult struct {
	Voyage      VoyageSummary  `json:"voyage"`
	Settings    ReplaySettings `json:"replay_settings"`
	Metadata    ReplayMetadata `json:"metadata"`
	Positions   []ReplayPoint  `json:"positions"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// ReplayFrame is a single indexed frame of a voyage's recorded route.
type ReplayFrame struct {
	FrameIndex int       `json:"frame_index"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      *float64  `json:"speed"`
	Heading    *int      `json:"heading"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

// CleanupResult reports the outcome of a retention sweep. In dry-run mode
// RecordsDeleted is always zero and no state is mutated.
type CleanupResult struct {
	Action         string    `json:"action"`
	DryRun         bool      `json:"dry_run"`
	CutoffDate     time.Time `json:"cutoff_date"`
	RecordsFound   int64     `json:"records_found"`
	RecordsDeleted int64     `json:"records_deleted"`
	RetentionDays  int       `json:"retention_days"`
}

// IngestSummary reports the outcome of a batch position-report ingest.
type IngestSummary struct {
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
	FetchedCount   int       `json:"fetched_count"`
	ProcessedCount int       `json:"processed_count"`
	CreatedCount   int       `json:"created_count"`
	UpdatedCount   int       `json:"updated_count"`
	SkippedCount   int       `json:"skipped_count"`
	ErrorCount     int       `json:"error_count"`
	Errors         []string  `json:"errors,omitempty"`
	Success        bool      `json:"success"`
}
