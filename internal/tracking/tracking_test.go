// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/thalassa/internal/config"
	"github.com/tomtom215/thalassa/internal/database"
	"github.com/tomtom215/thalassa/internal/models"
)

type fakeVesselStore struct {
	mu      sync.Mutex
	vessels map[int64]*models.Vessel
	nextID  int64
}

func newFakeVesselStore() *fakeVesselStore {
	return &fakeVesselStore{vessels: make(map[int64]*models.Vessel), nextID: 1}
}

func (f *fakeVesselStore) VesselByIMO(_ context.Context, imo string) (*models.Vessel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vessels {
		if v.IMONumber == imo {
			return v, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeVesselStore) VesselByMMSI(_ context.Context, mmsi string) (*models.Vessel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vessels {
		if v.MMSI != nil && *v.MMSI == mmsi {
			return v, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeVesselStore) CreateVessel(_ context.Context, v *models.Vessel) (*models.Vessel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = f.nextID
	f.nextID++
	f.vessels[v.ID] = v
	return v, nil
}

func (f *fakeVesselStore) UpdateVessel(_ context.Context, v *models.Vessel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vessels[v.ID]; !ok {
		return database.ErrNotFound
	}
	f.vessels[v.ID] = v
	return nil
}

func (f *fakeVesselStore) StaleVessels(_ context.Context, cutoff time.Time) ([]*models.Vessel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Vessel
	for _, v := range f.vessels {
		if v.LastUpdate.Before(cutoff) {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []models.NewPositionParams
}

func (f *fakeRecorder) RecordPosition(_ context.Context, vesselID int64, params models.NewPositionParams, _ string) (*models.Position, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	return &models.Position{ID: int64(len(f.calls)), VesselID: vesselID}, true, nil
}

func newTrackingService() (*Service, *fakeVesselStore, *fakeRecorder) {
	store := newFakeVesselStore()
	recorder := &fakeRecorder{}
	svc := NewService(store, recorder, config.Default().Tracking)
	return svc, store, recorder
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	n := Normalize(Report{
		IMO:      " 9074729 ",
		Name:     "  MV Horizon ",
		Latitude: 25.2, Longitude: 55.3,
		Speed: 150, Heading: 365,
	}, now)

	assert.Equal(t, "9074729", n.IMO)
	assert.Equal(t, "MV Horizon", n.Name)
	assert.Equal(t, "Unknown", n.VesselType)
	require.NotNil(t, n.Latitude)
	assert.InDelta(t, 25.2, *n.Latitude, 1e-9)
	assert.InDelta(t, 100.0, *n.Speed, 1e-9) // clamped
	assert.Equal(t, 5, *n.Heading)           // 365 mod 360
	assert.True(t, n.Timestamp.Equal(now))   // defaulted
}

func TestNormalize_DropsInvalidCoordinates(t *testing.T) {
	n := Normalize(Report{IMO: "1", Latitude: 95, Longitude: 55}, time.Now().UTC())
	assert.Nil(t, n.Latitude)
	assert.Nil(t, n.Longitude)

	n = Normalize(Report{IMO: "1", Latitude: 20, Longitude: -181}, time.Now().UTC())
	assert.Nil(t, n.Latitude)

	n = Normalize(Report{IMO: "1", Speed: -5, Heading: -10}, time.Now().UTC())
	assert.Zero(t, *n.Speed)
	assert.Equal(t, 350, *n.Heading)
}

func TestNormalize_DropsNullIsland(t *testing.T) {
	// Feeds without a GPS fix report exactly (0, 0).
	n := Normalize(Report{IMO: "1", Latitude: 0, Longitude: 0}, time.Now().UTC())
	assert.Nil(t, n.Latitude)
	assert.Nil(t, n.Longitude)

	// A genuine position on either zero line survives.
	n = Normalize(Report{IMO: "1", Latitude: 0, Longitude: 6.73}, time.Now().UTC())
	require.NotNil(t, n.Latitude)
	require.NotNil(t, n.Longitude)
	assert.InDelta(t, 6.73, *n.Longitude, 1e-9)
}

func TestProcessReport_CreatesVessel(t *testing.T) {
	svc, _, recorder := newTrackingService()
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	vessel, created, applied, err := svc.ProcessReport(ctx, Report{
		IMO: "9074729", MMSI: "211234560", Name: "MV Horizon",
		Latitude: 25.2, Longitude: 55.3, Speed: 14, Heading: 90, Timestamp: ts,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, applied)
	assert.Equal(t, "9074729", vessel.IMONumber)
	require.NotNil(t, vessel.MMSI)

	// Position handed to history.
	require.Len(t, recorder.calls, 1)
	assert.InDelta(t, 25.2, recorder.calls[0].Latitude, 1e-9)
	assert.Equal(t, "AIS", recorder.calls[0].Source)
}

func TestProcessReport_SkipsRecentlyUpdated(t *testing.T) {
	svc, store, recorder := newTrackingService()
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	store.CreateVessel(ctx, &models.Vessel{
		IMONumber: "9074729", Name: "MV Horizon", LastUpdate: now.Add(-time.Minute),
	})

	_, created, applied, err := svc.ProcessReport(ctx, Report{
		IMO: "9074729", Latitude: 1, Longitude: 1, Timestamp: now,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.False(t, applied)
	assert.Empty(t, recorder.calls)
}

func TestProcessReport_FallsBackToMMSI(t *testing.T) {
	svc, store, _ := newTrackingService()
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mmsi := "211234560"
	seeded, _ := store.CreateVessel(ctx, &models.Vessel{
		IMONumber: "", MMSI: &mmsi, Name: "Old Name", LastUpdate: now.Add(-time.Hour),
	})

	vessel, created, applied, err := svc.ProcessReport(ctx, Report{
		MMSI: mmsi, Name: "New Name", Latitude: 1, Longitude: 1, Timestamp: now,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, applied)
	assert.Equal(t, seeded.ID, vessel.ID)
	assert.Equal(t, "New Name", vessel.Name)
}

func TestProcessReport_NoIdentity(t *testing.T) {
	svc, _, _ := newTrackingService()
	_, _, _, err := svc.ProcessReport(context.Background(), Report{Latitude: 1, Longitude: 1})
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestIngestBatch(t *testing.T) {
	svc, _, _ := newTrackingService()
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	reports := []Report{
		{IMO: "1000001", Latitude: 1, Longitude: 1, Timestamp: now},
		{IMO: "1000002", Latitude: 2, Longitude: 2, Timestamp: now},
		{}, // no identity
	}

	summary := svc.IngestBatch(ctx, reports)
	assert.Equal(t, 3, summary.FetchedCount)
	assert.Equal(t, 2, summary.ProcessedCount)
	assert.Equal(t, 2, summary.CreatedCount)
	assert.Equal(t, 1, summary.ErrorCount)
	assert.False(t, summary.Success)
}

func TestStaleVessels(t *testing.T) {
	svc, store, _ := newTrackingService()
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	store.CreateVessel(ctx, &models.Vessel{IMONumber: "1", LastUpdate: now.Add(-48 * time.Hour)})
	store.CreateVessel(ctx, &models.Vessel{IMONumber: "2", LastUpdate: now.Add(-time.Hour)})

	stale, err := svc.StaleVessels(ctx, 0) // default 24h
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "1", stale[0].IMONumber)
}
