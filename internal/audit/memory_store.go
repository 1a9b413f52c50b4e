// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation used in tests and
// as a fallback when audit persistence is disabled.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	maxLen  int
}

// NewMemoryStore creates a memory store bounded at maxLen entries.
// Older entries are dropped first when the bound is exceeded; zero
// means unbounded.
func NewMemoryStore(maxLen int) *MemoryStore {
	return &MemoryStore{maxLen: maxLen}
}

func (s *MemoryStore) Save(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, *entry)
	if s.maxLen > 0 && len(s.entries) > s.maxLen {
		s.entries = s.entries[len(s.entries)-s.maxLen:]
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			e := s.entries[i]
			return &e, nil
		}
	}
	return nil, ErrEntryNotFound
}

func (s *MemoryStore) Query(_ context.Context, filter QueryFilter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Entry
	for i := range s.entries {
		if matchesFilter(&s.entries[i], &filter) {
			matched = append(matched, s.entries[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if filter.OrderDesc {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *MemoryStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for i := range s.entries {
		if matchesFilter(&s.entries[i], &filter) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for i := range s.entries {
		if s.entries[i].RetentionDate.Before(now) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []Entry
	var deleted int64
	for i := range s.entries {
		if s.entries[i].RetentionDate.Before(now) {
			deleted++
			continue
		}
		kept = append(kept, s.entries[i])
	}
	s.entries = kept
	return deleted, nil
}

func (s *MemoryStore) GetStats(_ context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		TotalEntries:    int64(len(s.entries)),
		EntriesByAction: make(map[string]int64),
	}
	for i := range s.entries {
		e := &s.entries[i]
		stats.EntriesByAction[string(e.Action)]++
		if stats.OldestEntry == nil || e.Timestamp.Before(*stats.OldestEntry) {
			t := e.Timestamp
			stats.OldestEntry = &t
		}
		if stats.NewestEntry == nil || e.Timestamp.After(*stats.NewestEntry) {
			t := e.Timestamp
			stats.NewestEntry = &t
		}
	}
	return stats, nil
}

// Len returns the current number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func matchesFilter(e *Entry, f *QueryFilter) bool {
	if len(f.Actions) > 0 {
		found := false
		for _, a := range f.Actions {
			if e.Action == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.VesselID != nil && (e.VesselID == nil || *e.VesselID != *f.VesselID) {
		return false
	}
	if f.VoyageID != nil && (e.VoyageID == nil || *e.VoyageID != *f.VoyageID) {
		return false
	}
	if f.StartTime != nil && e.Timestamp.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && e.Timestamp.After(*f.EndTime) {
		return false
	}
	return true
}
