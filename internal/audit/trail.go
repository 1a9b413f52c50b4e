// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/thalassa/internal/logging"
)

// SystemUser identifies entries generated by background jobs rather
// than an API caller.
const SystemUser = "system"

// Config holds audit trail settings.
type Config struct {
	// Enabled controls whether entries are written at all.
	Enabled bool

	// RetentionDays is how long entries are kept before the sweeper
	// may delete them.
	RetentionDays int
}

// DefaultConfig returns the seven-year retention default expected by
// maritime compliance regimes.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		RetentionDays: 2555,
	}
}

// Trail records compliance audit entries. Writes are synchronous so a
// caller returning success knows its trail entry is durable; retention
// deletes in particular must not run ahead of their audit record.
type Trail struct {
	config *Config
	store  Store
}

// NewTrail creates an audit trail writing to the given store.
func NewTrail(store Store, config *Config) *Trail {
	if config == nil {
		config = DefaultConfig()
	}
	return &Trail{config: config, store: store}
}

// Store exposes the underlying store for query endpoints.
func (t *Trail) Store() Store {
	return t.store
}

// Enabled reports whether entries are being written.
func (t *Trail) Enabled() bool {
	return t.config.Enabled && t.store != nil
}

// Record writes one audit entry. Details may be nil.
func (t *Trail) Record(ctx context.Context, action Action, userID string, vesselID, voyageID *int64, details map[string]interface{}) error {
	if !t.Enabled() {
		return nil
	}
	if userID == "" {
		userID = SystemUser
	}

	now := time.Now().UTC()
	entry := &Entry{
		ID:                 uuid.NewString(),
		Timestamp:          now,
		Action:             action,
		UserID:             userID,
		VesselID:           vesselID,
		VoyageID:           voyageID,
		Details:            mustJSON(details),
		ComplianceCategory: categoryForAction(action),
		RetentionDate:      now.AddDate(0, 0, t.config.RetentionDays),
	}

	if err := t.store.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s audit entry: %w", action, err)
	}
	return nil
}

// RecordOrLog records an entry and downgrades a failure to a log line.
// Used on read paths where an audit write failure should not fail the
// user's request.
func (t *Trail) RecordOrLog(ctx context.Context, action Action, userID string, vesselID, voyageID *int64, details map[string]interface{}) {
	if err := t.Record(ctx, action, userID, vesselID, voyageID, details); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("action", string(action)).Msg("Audit entry write failed")
	}
}

func mustJSON(v map[string]interface{}) json.RawMessage {
	if len(v) == 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
