// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package audit provides the compliance audit trail for position
// history access and mutation. Every entry carries a retention date so
// the sweeper can enforce the regulatory retention window.
package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// Action categorizes audit entries.
type Action string

const (
	ActionPositionRecorded Action = "POSITION_RECORDED"
	ActionRouteAccessed    Action = "ROUTE_ACCESSED"
	ActionReplayStarted    Action = "REPLAY_STARTED"
	ActionReplayCompleted  Action = "REPLAY_COMPLETED"
	ActionVoyageUpdated    Action = "VOYAGE_UPDATED"
	ActionDataRetention    Action = "DATA_RETENTION"
)

// ComplianceCategory groups entries by the regulatory concern they
// serve.
type ComplianceCategory string

const (
	CategoryPositionData  ComplianceCategory = "POSITION_DATA"
	CategoryDataAccess    ComplianceCategory = "DATA_ACCESS"
	CategoryVoyageChange  ComplianceCategory = "VOYAGE_CHANGE"
	CategoryDataRetention ComplianceCategory = "DATA_RETENTION"
)

// categoryForAction maps each action to its compliance category.
func categoryForAction(action Action) ComplianceCategory {
	switch action {
	case ActionPositionRecorded:
		return CategoryPositionData
	case ActionVoyageUpdated:
		return CategoryVoyageChange
	case ActionDataRetention:
		return CategoryDataRetention
	default:
		return CategoryDataAccess
	}
}

// Entry is a single audit trail record.
type Entry struct {
	// ID is a unique identifier for this entry.
	ID string `json:"id"`

	// Timestamp when the audited action occurred.
	Timestamp time.Time `json:"timestamp"`

	// Action categorizes the entry.
	Action Action `json:"action"`

	// UserID identifies the principal who performed the action. System
	// initiated actions use "system".
	UserID string `json:"user_id"`

	// VesselID and VoyageID scope the entry when applicable.
	VesselID *int64 `json:"vessel_id,omitempty"`
	VoyageID *int64 `json:"voyage_id,omitempty"`

	// Details carries action-specific structured context.
	Details json.RawMessage `json:"details,omitempty"`

	// ComplianceCategory groups the entry for reporting.
	ComplianceCategory ComplianceCategory `json:"compliance_category"`

	// RetentionDate is when this entry becomes eligible for deletion.
	RetentionDate time.Time `json:"retention_date"`
}

// QueryFilter selects audit entries.
type QueryFilter struct {
	Actions   []Action
	UserID    string
	VesselID  *int64
	VoyageID  *int64
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
	OrderDesc bool
}

// Stats summarizes the audit store contents.
type Stats struct {
	TotalEntries    int64            `json:"total_entries"`
	EntriesByAction map[string]int64 `json:"entries_by_action"`
	OldestEntry     *time.Time       `json:"oldest_entry,omitempty"`
	NewestEntry     *time.Time       `json:"newest_entry,omitempty"`
}

// Store persists audit entries.
type Store interface {
	// Save persists an entry.
	Save(ctx context.Context, entry *Entry) error

	// Get returns the entry with the given ID.
	Get(ctx context.Context, id string) (*Entry, error)

	// Query returns entries matching the filter.
	Query(ctx context.Context, filter QueryFilter) ([]Entry, error)

	// Count returns the number of entries matching the filter.
	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// CountExpired counts entries whose retention date is before now.
	CountExpired(ctx context.Context, now time.Time) (int64, error)

	// DeleteExpired removes entries whose retention date is before now
	// and returns the number deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// GetStats returns store statistics.
	GetStats(ctx context.Context) (*Stats, error)
}
