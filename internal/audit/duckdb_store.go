// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/thalassa/internal/logging"
)

// ErrEntryNotFound is returned when no entry matches the requested ID.
var ErrEntryNotFound = errors.New("audit entry not found")

// DuckDBStore implements Store using DuckDB for persistent storage.
type DuckDBStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewDuckDBStore creates a DuckDB-backed audit store on an existing
// connection. Call CreateTable before first use.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the audit_log table and its indexes.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			ts TIMESTAMP NOT NULL,
			action TEXT NOT NULL,
			user_id TEXT NOT NULL,
			vessel_id BIGINT,
			voyage_id BIGINT,
			details JSON,
			compliance_category TEXT NOT NULL,
			retention_date TIMESTAMP NOT NULL
		)`,
		"CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_log (ts DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_action_ts ON audit_log (action, ts)",
		"CREATE INDEX IF NOT EXISTS idx_audit_vessel_ts ON audit_log (vessel_id, ts)",
		"CREATE INDEX IF NOT EXISTS idx_audit_voyage_ts ON audit_log (voyage_id, ts)",
		"CREATE INDEX IF NOT EXISTS idx_audit_user_ts ON audit_log (user_id, ts)",
		"CREATE INDEX IF NOT EXISTS idx_audit_retention ON audit_log (retention_date)",
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create audit schema: %w", err)
		}
	}

	logging.Info().Msg("Audit log table created/verified")
	return nil
}

// Save persists an audit entry.
func (s *DuckDBStore) Save(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}

	var details *string
	if len(entry.Details) > 0 {
		d := string(entry.Details)
		details = &d
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, ts, action, user_id, vessel_id, voyage_id,
			details, compliance_category, retention_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp, string(entry.Action), entry.UserID,
		entry.VesselID, entry.VoyageID, details,
		string(entry.ComplianceCategory), entry.RetentionDate)
	if err != nil {
		return fmt.Errorf("failed to save audit entry: %w", err)
	}
	return nil
}

// Get returns the entry with the given ID, or ErrEntryNotFound.
func (s *DuckDBStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, s.baseQuery(false)+" WHERE id = ?", id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// Query returns entries matching the filter.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := s.buildQuery(filter, false)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to scan audit entry row")
			continue
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries matching the filter.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := s.buildQuery(filter, true)

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

// CountExpired counts entries past their retention date.
func (s *DuckDBStore) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_log WHERE retention_date < ?", now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired audit entries: %w", err)
	}
	return count, nil
}

// DeleteExpired removes entries past their retention date.
func (s *DuckDBStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_log WHERE retention_date < ?", now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired audit entries: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}
	if count > 0 {
		logging.Info().Int64("deleted", count).Msg("Deleted expired audit entries")
	}
	return count, nil
}

// GetStats returns statistics about the audit store.
func (s *DuckDBStore) GetStats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{EntriesByAction: make(map[string]int64)}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&stats.TotalEntries); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT action, COUNT(*) FROM audit_log GROUP BY action")
	if err != nil {
		return nil, fmt.Errorf("failed to get action counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int64
		if err := rows.Scan(&action, &count); err == nil {
			stats.EntriesByAction[action] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action counts: %w", err)
	}

	var oldest, newest sql.NullTime
	if err := s.db.QueryRowContext(ctx, "SELECT MIN(ts), MAX(ts) FROM audit_log").Scan(&oldest, &newest); err == nil {
		if oldest.Valid {
			stats.OldestEntry = &oldest.Time
		}
		if newest.Valid {
			stats.NewestEntry = &newest.Time
		}
	}

	return stats, nil
}

func (s *DuckDBStore) buildQuery(filter QueryFilter, countOnly bool) (string, []interface{}) {
	conditions, args := buildFilterConditions(filter)

	query := s.baseQuery(countOnly)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if !countOnly {
		query = appendOrderAndLimit(query, filter)
	}
	return query, args
}

func buildFilterConditions(filter QueryFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	if len(filter.Actions) > 0 {
		placeholders := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			placeholders[i] = "?"
			args = append(args, string(a))
		}
		conditions = append(conditions, fmt.Sprintf("action IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.VesselID != nil {
		conditions = append(conditions, "vessel_id = ?")
		args = append(args, *filter.VesselID)
	}
	if filter.VoyageID != nil {
		conditions = append(conditions, "voyage_id = ?")
		args = append(args, *filter.VoyageID)
	}
	if filter.StartTime != nil {
		conditions = append(conditions, "ts >= ?")
		args = append(args, *filter.StartTime)
	}
	if filter.EndTime != nil {
		conditions = append(conditions, "ts <= ?")
		args = append(args, *filter.EndTime)
	}

	return conditions, args
}

func (s *DuckDBStore) baseQuery(countOnly bool) string {
	if countOnly {
		return "SELECT COUNT(*) FROM audit_log"
	}
	// Cast the JSON column to VARCHAR for scanning.
	return `SELECT id, ts, action, user_id, vessel_id, voyage_id,
		CAST(details AS VARCHAR) as details, compliance_category, retention_date
	FROM audit_log`
}

func appendOrderAndLimit(query string, filter QueryFilter) string {
	if filter.OrderDesc {
		query += " ORDER BY ts DESC"
	} else {
		query += " ORDER BY ts ASC"
	}
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}
	return query
}

func scanEntry(row interface{ Scan(...any) error }) (*Entry, error) {
	var e Entry
	var action, category string
	var vesselID, voyageID sql.NullInt64
	var details sql.NullString

	err := row.Scan(&e.ID, &e.Timestamp, &action, &e.UserID,
		&vesselID, &voyageID, &details, &category, &e.RetentionDate)
	if err != nil {
		return nil, err
	}

	e.Action = Action(action)
	e.ComplianceCategory = ComplianceCategory(category)
	if vesselID.Valid {
		e.VesselID = &vesselID.Int64
	}
	if voyageID.Valid {
		e.VoyageID = &voyageID.Int64
	}
	if details.Valid && details.String != "" {
		e.Details = []byte(details.String)
	}
	return &e, nil
}
