// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/thalassa/internal/audit"
	"github.com/tomtom215/thalassa/internal/config"
	"github.com/tomtom215/thalassa/internal/models"
)

func newTestService(t *testing.T) (*Service, *fakeStore, *audit.MemoryStore) {
	t.Helper()
	store := newFakeStore()
	auditStore := audit.NewMemoryStore(0)
	trail := audit.NewTrail(auditStore, audit.DefaultConfig())
	svc := NewService(store, store, store, trail, config.Default().History)
	return svc, store, auditStore
}

func seedTestVessel(store *fakeStore) *models.Vessel {
	return store.addVessel(&models.Vessel{
		IMONumber:  "9074729",
		Name:       "MV Horizon",
		VesselType: "CONTAINER",
		LastUpdate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestRecordPosition_Idempotent(t *testing.T) {
	svc, store, auditStore := newTestService(t)
	ctx := context.Background()
	vessel := seedTestVessel(store)

	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	params := models.NewPositionParams{Latitude: 25.2048, Longitude: 55.2708, Timestamp: ts}

	first, created, err := svc.RecordPosition(ctx, vessel.ID, params, "op-1")
	require.NoError(t, err)
	assert.True(t, created)

	// Same (vessel, timestamp) with different coordinates resolves to
	// the stored sample; first write wins.
	params.Latitude = 99
	second, created, err := svc.RecordPosition(ctx, vessel.ID, params, "op-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.InDelta(t, 25.2048, second.Latitude, 1e-9)

	// Exactly one POSITION_RECORDED entry despite two calls.
	count, err := auditStore.Count(ctx, audit.QueryFilter{Actions: []audit.Action{audit.ActionPositionRecorded}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRecordPosition_VesselNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.RecordPosition(context.Background(), 42, models.NewPositionParams{
		Latitude: 1, Longitude: 1, Timestamp: time.Now().UTC(),
	}, "op-1")
	assert.ErrorIs(t, err, ErrVesselNotFound)
}

func TestRecordPosition_AssociatesInProgressVoyage(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	vessel := seedTestVessel(store)

	dep := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	voyage := store.addVoyage(&models.Voyage{
		VesselID: vessel.ID, DepartureTime: dep, Status: models.VoyageStatusInProgress,
	}, nil)

	pos, created, err := svc.RecordPosition(ctx, vessel.ID, models.NewPositionParams{
		Latitude: 10, Longitude: 20, Timestamp: dep.Add(6 * time.Hour),
	}, "op-1")
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, pos.VoyageID)
	assert.Equal(t, voyage.ID, *pos.VoyageID)
}

func TestRecordPosition_TieBreakMostRecentDeparture(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	vessel := seedTestVessel(store)

	dep := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store.addVoyage(&models.Voyage{
		VesselID: vessel.ID, DepartureTime: dep, Status: models.VoyageStatusInProgress,
	}, nil)
	newer := store.addVoyage(&models.Voyage{
		VesselID: vessel.ID, DepartureTime: dep.Add(48 * time.Hour), Status: models.VoyageStatusInProgress,
	}, nil)

	pos, _, err := svc.RecordPosition(ctx, vessel.ID, models.NewPositionParams{
		Latitude: 10, Longitude: 20, Timestamp: dep.Add(72 * time.Hour),
	}, "op-1")
	require.NoError(t, err)
	require.NotNil(t, pos.VoyageID)
	assert.Equal(t, newer.ID, *pos.VoyageID)
}

func TestRecordPosition_AutoStartsPlannedVoyage(t *testing.T) {
	svc, store, auditStore := newTestService(t)
	ctx := context.Background()
	vessel := seedTestVessel(store)

	// Departure 90 minutes after the position timestamp, inside the
	// two-hour grace window.
	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	voyage := store.addVoyage(&models.Voyage{
		VesselID: vessel.ID, DepartureTime: ts.Add(90 * time.Minute), Status: models.VoyageStatusPlanned,
	}, nil)

	pos, _, err := svc.RecordPosition(ctx, vessel.ID, models.NewPositionParams{
		Latitude: 10, Longitude: 20, Timestamp: ts,
	}, "op-1")
	require.NoError(t, err)
	require.NotNil(t, pos.VoyageID)
	assert.Equal(t, voyage.ID, *pos.VoyageID)

	updated, err := store.VoyageByID(ctx, voyage.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoyageStatusInProgress, updated.Status)

	// Exactly one VOYAGE_UPDATED entry with auto_started metadata.
	entries, err := auditStore.Query(ctx, audit.QueryFilter{Actions: []audit.Action{audit.ActionVoyageUpdated}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Details), `"auto_started":true`)
}

func TestRecordPosition_PlannedVoyageOutsideGraceWindow(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	vessel := seedTestVessel(store)

	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	voyage := store.addVoyage(&models.Voyage{
		VesselID: vessel.ID, DepartureTime: ts.Add(3 * time.Hour), Status: models.VoyageStatusPlanned,
	}, nil)

	pos, _, err := svc.RecordPosition(ctx, vessel.ID, models.NewPositionParams{
		Latitude: 10, Longitude: 20, Timestamp: ts,
	}, "op-1")
	require.NoError(t, err)
	assert.Nil(t, pos.VoyageID)

	unchanged, err := store.VoyageByID(ctx, voyage.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoyageStatusPlanned, unchanged.Status)
}

func TestRecordPosition_DefaultsSource(t *testing.T) {
	svc, store, _ := newTestService(t)
	vessel := seedTestVessel(store)

	pos, _, err := svc.RecordPosition(context.Background(), vessel.ID, models.NewPositionParams{
		Latitude: 1, Longitude: 2, Timestamp: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}, "op-1")
	require.NoError(t, err)
	assert.Equal(t, "AIS", pos.Source)
}

func TestCompleteVoyage(t *testing.T) {
	svc, store, auditStore := newTestService(t)
	ctx := context.Background()
	vessel := seedTestVessel(store)

	dep := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	voyage := store.addVoyage(&models.Voyage{
		VesselID: vessel.ID, DepartureTime: dep, Status: models.VoyageStatusInProgress,
	}, nil)

	// Warm the summary cache so the completion has something to evict.
	warm, err := svc.voyageSummary(ctx, voyage.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoyageStatusInProgress, warm.Status)

	arrival := dep.Add(200 * time.Hour)
	completed, err := svc.CompleteVoyage(ctx, voyage.ID, arrival, "op-1")
	require.NoError(t, err)
	assert.Equal(t, models.VoyageStatusCompleted, completed.Status)
	require.NotNil(t, completed.ArrivalTime)
	assert.True(t, completed.ArrivalTime.Equal(arrival))

	// The cached summary must reflect the final status immediately.
	summary, err := svc.voyageSummary(ctx, voyage.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoyageStatusCompleted, summary.Status)

	entries, err := auditStore.Query(ctx, audit.QueryFilter{Actions: []audit.Action{audit.ActionVoyageUpdated}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Details), string(models.VoyageStatusCompleted))
}

func TestCompleteVoyage_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CompleteVoyage(context.Background(), 404, time.Time{}, "op-1")
	assert.ErrorIs(t, err, ErrVoyageNotFound)
}

func TestCompleteVoyage_DefaultsArrivalToNow(t *testing.T) {
	svc, store, _ := newTestService(t)
	vessel := seedTestVessel(store)

	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	voyage := store.addVoyage(&models.Voyage{
		VesselID: vessel.ID, DepartureTime: now.Add(-100 * time.Hour), Status: models.VoyageStatusInProgress,
	}, nil)

	completed, err := svc.CompleteVoyage(context.Background(), voyage.ID, time.Time{}, "op-1")
	require.NoError(t, err)
	require.NotNil(t, completed.ArrivalTime)
	assert.True(t, completed.ArrivalTime.Equal(now))
}

func TestRecordPosition_UpdatesVesselCache(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	vessel := seedTestVessel(store)

	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	speed := 12.5
	heading := 87
	_, _, err := svc.RecordPosition(ctx, vessel.ID, models.NewPositionParams{
		Latitude: 25.2, Longitude: 55.3, Timestamp: ts, Speed: &speed, Heading: &heading,
	}, "op-1")
	require.NoError(t, err)

	got, err := store.VesselByID(ctx, vessel.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastPositionLat)
	assert.InDelta(t, 25.2, *got.LastPositionLat, 1e-9)
	require.NotNil(t, got.Speed)
	assert.InDelta(t, 12.5, *got.Speed, 1e-9)
	assert.True(t, got.LastUpdate.Equal(ts))
}
