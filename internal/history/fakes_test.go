// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/thalassa/internal/database"
	"github.com/tomtom215/thalassa/internal/models"
)

// fakeStore is an in-memory implementation of the service's store
// interfaces, mirroring the persistence semantics of the DuckDB layer.
type fakeStore struct {
	mu        sync.Mutex
	vessels   map[int64]*models.Vessel
	voyages   map[int64]*models.Voyage
	summaries map[int64]*models.VoyageSummary
	positions []*models.Position
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vessels:   make(map[int64]*models.Vessel),
		voyages:   make(map[int64]*models.Voyage),
		summaries: make(map[int64]*models.VoyageSummary),
		nextID:    1,
	}
}

func (f *fakeStore) addVessel(v *models.Vessel) *models.Vessel {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = f.nextID
	f.nextID++
	f.vessels[v.ID] = v
	return v
}

func (f *fakeStore) addVoyage(v *models.Voyage, summary *models.VoyageSummary) *models.Voyage {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = f.nextID
	f.nextID++
	f.voyages[v.ID] = v
	if summary == nil {
		summary = &models.VoyageSummary{VesselName: "MV Test", PortFrom: "Rotterdam", PortTo: "Singapore"}
	}
	summary.ID = v.ID
	summary.DepartureTime = v.DepartureTime
	summary.ArrivalTime = v.ArrivalTime
	summary.Status = v.Status
	f.summaries[v.ID] = summary
	return v
}

func (f *fakeStore) VesselByID(_ context.Context, id int64) (*models.Vessel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vessels[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) VoyageByID(_ context.Context, id int64) (*models.Voyage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.voyages[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeStore) VoyageSummaryByID(_ context.Context, id int64) (*models.VoyageSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.summaries[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) InProgressVoyageAt(_ context.Context, vesselID int64, ts time.Time) (*models.Voyage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var best *models.Voyage
	for _, v := range f.voyages {
		if v.VesselID != vesselID || v.Status != models.VoyageStatusInProgress {
			continue
		}
		if v.DepartureTime.After(ts) {
			continue
		}
		if v.ArrivalTime != nil && v.ArrivalTime.Before(ts) {
			continue
		}
		if best == nil || v.DepartureTime.After(best.DepartureTime) {
			best = v
		}
	}
	if best == nil {
		return nil, database.ErrNotFound
	}
	copied := *best
	return &copied, nil
}

func (f *fakeStore) PlannedVoyageDepartingBy(_ context.Context, vesselID int64, deadline time.Time) (*models.Voyage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var best *models.Voyage
	for _, v := range f.voyages {
		if v.VesselID != vesselID || v.Status != models.VoyageStatusPlanned {
			continue
		}
		if v.DepartureTime.After(deadline) {
			continue
		}
		if best == nil || v.DepartureTime.Before(best.DepartureTime) {
			best = v
		}
	}
	if best == nil {
		return nil, database.ErrNotFound
	}
	copied := *best
	return &copied, nil
}

func (f *fakeStore) MarkVoyageInProgress(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.voyages[id]
	if !ok {
		return database.ErrNotFound
	}
	v.Status = models.VoyageStatusInProgress
	if s, ok := f.summaries[id]; ok {
		s.Status = models.VoyageStatusInProgress
	}
	return nil
}

func (f *fakeStore) CompleteVoyage(_ context.Context, id int64, arrival time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.voyages[id]
	if !ok {
		return database.ErrNotFound
	}
	t := arrival
	v.Status = models.VoyageStatusCompleted
	v.ArrivalTime = &t
	if s, ok := f.summaries[id]; ok {
		s.Status = models.VoyageStatusCompleted
		s.ArrivalTime = &t
	}
	return nil
}

func (f *fakeStore) SavePosition(_ context.Context, p *models.Position) (*models.Position, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.positions {
		if existing.VesselID == p.VesselID && existing.Timestamp.Equal(p.Timestamp) {
			return existing, false, nil
		}
	}

	stored := *p
	stored.ID = f.nextID
	f.nextID++
	stored.CreatedAt = time.Now().UTC()
	f.positions = append(f.positions, &stored)

	if v, ok := f.vessels[p.VesselID]; ok && !p.IsInterpolated && !v.LastUpdate.After(p.Timestamp) {
		v.LastPositionLat = &stored.Latitude
		v.LastPositionLon = &stored.Longitude
		v.Speed = stored.Speed
		v.Heading = stored.Heading
		v.LastUpdate = stored.Timestamp
	}
	return &stored, true, nil
}

func (f *fakeStore) VoyagePositions(_ context.Context, voyageID int64, includeInterpolated bool) ([]*models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Position
	for _, p := range f.positions {
		if p.VoyageID == nil || *p.VoyageID != voyageID {
			continue
		}
		if p.IsInterpolated && !includeInterpolated {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeStore) VesselPositions(_ context.Context, vesselID int64, start, end time.Time, limit int) ([]*models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Position
	for _, p := range f.positions {
		if p.VesselID != vesselID || p.Timestamp.Before(start) || p.Timestamp.After(end) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountPositionsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, p := range f.positions {
		if p.Timestamp.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) DeletePositionsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var kept []*models.Position
	var deleted int64
	for _, p := range f.positions {
		if p.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	f.positions = kept
	return deleted, nil
}
