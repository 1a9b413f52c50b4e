// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/thalassa/internal/audit"
	"github.com/tomtom215/thalassa/internal/database"
	"github.com/tomtom215/thalassa/internal/history"
	"github.com/tomtom215/thalassa/internal/models"
	"github.com/tomtom215/thalassa/internal/tracking"
)

// Datastore is the direct database surface the handlers use: liveness
// for the health endpoint and the port reference data.
type Datastore interface {
	Ping(ctx context.Context) error
	PortByID(ctx context.Context, id int64) (*models.Port, error)
	ListPorts(ctx context.Context) ([]*models.Port, error)
}

// Handler holds the services the HTTP layer fronts.
type Handler struct {
	history  *history.Service
	tracking *tracking.Service
	audits   audit.Store
	db       Datastore
}

// NewHandler wires the HTTP handlers to their backing services.
func NewHandler(hist *history.Service, track *tracking.Service, audits audit.Store, db Datastore) *Handler {
	return &Handler{history: hist, tracking: track, audits: audits, db: db}
}

// Health reports service and database liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := map[string]string{"service": "ok", "database": "ok"}
	code := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, r, code, status, start)
}

// RecordPosition handles POST /vessels/{vesselID}/positions.
func (h *Handler) RecordPosition(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	vesselID, ok := urlParamInt64(w, r, "vesselID")
	if !ok {
		return
	}

	var params models.NewPositionParams
	if !decodeBody(w, r, &params) {
		return
	}

	pos, created, err := h.history.RecordPosition(r.Context(), vesselID, params, userIDFromRequest(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	respondJSON(w, r, code, map[string]interface{}{
		"position": pos,
		"created":  created,
	}, start)
}

// VesselHistory handles GET /vessels/{vesselID}/history.
func (h *Handler) VesselHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	vesselID, ok := urlParamInt64(w, r, "vesselID")
	if !ok {
		return
	}

	startTime, ok := queryTime(r, "start")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "start must be RFC 3339", nil)
		return
	}
	endTime, ok := queryTime(r, "end")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "end must be RFC 3339", nil)
		return
	}

	result, err := h.history.VesselHistory(r.Context(), vesselID, startTime, endTime, queryInt(r, "limit", 0), userIDFromRequest(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result, start)
}

// StaleVessels handles GET /vessels/stale.
func (h *Handler) StaleVessels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	staleAfter := time.Duration(queryInt(r, "hours", 0)) * time.Hour
	vessels, err := h.tracking.StaleVessels(r.Context(), staleAfter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"vessels": vessels,
		"count":   len(vessels),
	}, start)
}

// ListPorts handles GET /ports.
func (h *Handler) ListPorts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ports, err := h.db.ListPorts(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"ports": ports,
		"count": len(ports),
	}, start)
}

// Port handles GET /ports/{portID}.
func (h *Handler) Port(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	portID, ok := urlParamInt64(w, r, "portID")
	if !ok {
		return
	}

	port, err := h.db.PortByID(r.Context(), portID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "NOT_FOUND", "port not found", nil)
			return
		}
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, port, start)
}

// VoyageRoute handles GET /voyages/{voyageID}/route.
func (h *Handler) VoyageRoute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	voyageID, ok := urlParamInt64(w, r, "voyageID")
	if !ok {
		return
	}
	includeInterpolated := queryBool(r, "include_interpolated", false)

	result, err := h.history.VoyageRoute(r.Context(), voyageID, includeInterpolated, userIDFromRequest(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result, start)
}

// VoyageStatistics handles GET /voyages/{voyageID}/statistics.
func (h *Handler) VoyageStatistics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	voyageID, ok := urlParamInt64(w, r, "voyageID")
	if !ok {
		return
	}

	result, err := h.history.VoyageStatistics(r.Context(), voyageID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result, start)
}

type replayRequest struct {
	SpeedMultiplier float64 `json:"speed_multiplier" validate:"omitempty,gt=0"`
	InterpolateGaps *bool   `json:"interpolate_gaps"`
}

// GenerateReplay handles POST /voyages/{voyageID}/replay.
func (h *Handler) GenerateReplay(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	voyageID, ok := urlParamInt64(w, r, "voyageID")
	if !ok {
		return
	}

	req := replayRequest{SpeedMultiplier: 1.0}
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}
	settings := models.ReplaySettings{
		SpeedMultiplier: req.SpeedMultiplier,
		InterpolateGaps: true,
	}
	if settings.SpeedMultiplier == 0 {
		settings.SpeedMultiplier = 1.0
	}
	if req.InterpolateGaps != nil {
		settings.InterpolateGaps = *req.InterpolateGaps
	}

	result, err := h.history.GenerateReplay(r.Context(), voyageID, settings, userIDFromRequest(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result, start)
}

// CreateReplaySession handles POST /voyages/{voyageID}/replay/session.
func (h *Handler) CreateReplaySession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	voyageID, ok := urlParamInt64(w, r, "voyageID")
	if !ok {
		return
	}

	req := replayRequest{SpeedMultiplier: 1.0}
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}
	settings := models.ReplaySettings{SpeedMultiplier: req.SpeedMultiplier, InterpolateGaps: true}
	if settings.SpeedMultiplier == 0 {
		settings.SpeedMultiplier = 1.0
	}
	if req.InterpolateGaps != nil {
		settings.InterpolateGaps = *req.InterpolateGaps
	}

	sessionID, err := h.history.CreateReplaySession(r.Context(), voyageID, settings, userIDFromRequest(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, map[string]interface{}{
		"session_id": sessionID,
		"voyage_id":  voyageID,
	}, start)
}

// ReplayFrame handles GET /voyages/{voyageID}/replay/frames/{frameIndex}.
func (h *Handler) ReplayFrame(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	voyageID, ok := urlParamInt64(w, r, "voyageID")
	if !ok {
		return
	}
	frameIndex, err := strconv.Atoi(chi.URLParam(r, "frameIndex"))
	if err != nil || frameIndex < 0 {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "frameIndex must be a non-negative integer", nil)
		return
	}

	frame, err := h.history.ReplayFrame(r.Context(), voyageID, frameIndex)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, frame, start)
}

type completeVoyageRequest struct {
	ArrivalTime *time.Time `json:"arrival_time"`
}

// CompleteVoyage handles POST /voyages/{voyageID}/complete. An absent
// arrival_time defaults to now.
func (h *Handler) CompleteVoyage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	voyageID, ok := urlParamInt64(w, r, "voyageID")
	if !ok {
		return
	}

	var req completeVoyageRequest
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}
	var arrival time.Time
	if req.ArrivalTime != nil {
		arrival = *req.ArrivalTime
	}

	voyage, err := h.history.CompleteVoyage(r.Context(), voyageID, arrival, userIDFromRequest(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, voyage, start)
}

type ingestRequest struct {
	Reports []tracking.Report `json:"reports" validate:"required,min=1,max=1000"`
}

// IngestReports handles POST /ingest with a batch of raw position reports.
func (h *Handler) IngestReports(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req ingestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	summary := h.tracking.IngestBatch(r.Context(), req.Reports)
	code := http.StatusOK
	if !summary.Success {
		code = http.StatusMultiStatus
	}
	respondJSON(w, r, code, summary, start)
}

// CleanupPositions handles POST /admin/cleanup/positions. Dry-run is the
// default; callers must pass dry_run=false to actually delete.
func (h *Handler) CleanupPositions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dryRun := queryBool(r, "dry_run", true)
	retentionDays := queryInt(r, "retention_days", 0)
	if retentionDays < 0 {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "retention_days must be non-negative", nil)
		return
	}

	result, err := h.history.CleanupOldPositions(r.Context(), retentionDays, dryRun)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result, start)
}

// CleanupAuditLogs handles POST /admin/cleanup/audit.
func (h *Handler) CleanupAuditLogs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dryRun := queryBool(r, "dry_run", true)

	result, err := h.history.CleanupOldAuditLogs(r.Context(), dryRun)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result, start)
}

// QueryAudit handles GET /audit with optional filters.
func (h *Handler) QueryAudit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	filter := audit.QueryFilter{
		UserID:    r.URL.Query().Get("user_id"),
		Limit:     queryInt(r, "limit", 100),
		Offset:    queryInt(r, "offset", 0),
		OrderDesc: true,
	}
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 100
	}
	if raw := r.URL.Query().Get("actions"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				filter.Actions = append(filter.Actions, audit.Action(a))
			}
		}
	}
	if raw := r.URL.Query().Get("vessel_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "vessel_id must be an integer", nil)
			return
		}
		filter.VesselID = &id
	}
	if raw := r.URL.Query().Get("voyage_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "voyage_id must be an integer", nil)
			return
		}
		filter.VoyageID = &id
	}
	if t, ok := queryTime(r, "start"); !ok {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "start must be RFC 3339", nil)
		return
	} else if !t.IsZero() {
		filter.StartTime = &t
	}
	if t, ok := queryTime(r, "end"); !ok {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "end must be RFC 3339", nil)
		return
	} else if !t.IsZero() {
		filter.EndTime = &t
	}

	entries, err := h.audits.Query(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	total, err := h.audits.Count(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
		"total":   total,
	}, start)
}

// AuditStats handles GET /audit/stats.
func (h *Handler) AuditStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.audits.GetStats(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats, start)
}

// respondServiceError maps service sentinel errors onto HTTP statuses.
// Empty-data outcomes are not failures: they come back as 200 responses
// whose payload explains the absence, so clients show "no data
// available" rather than an error state.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, history.ErrVesselNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "vessel not found", nil)
	case errors.Is(err, history.ErrVoyageNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "voyage not found", nil)
	case errors.Is(err, history.ErrEmptyRoute):
		respondEmptyData(w, r, "EMPTY_ROUTE", "voyage has no recorded positions")
	case errors.Is(err, history.ErrNoPositionData):
		respondEmptyData(w, r, "NO_POSITION_DATA", "voyage has no position data to replay")
	case errors.Is(err, history.ErrFrameOutOfRange):
		respondError(w, r, http.StatusNotFound, "FRAME_OUT_OF_RANGE", "frame index is out of range", nil)
	case errors.Is(err, history.ErrInvalidMultiplier):
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "speed multiplier must be positive", nil)
	case errors.Is(err, tracking.ErrNoIdentity):
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "report carries neither IMO nor MMSI", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func respondEmptyData(w http.ResponseWriter, r *http.Request, code, message string) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"empty":   true,
		"code":    code,
		"message": message,
	}, time.Now())
}
