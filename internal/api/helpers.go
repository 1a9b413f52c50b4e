// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package api

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/tomtom215/thalassa/internal/logging"
	"github.com/tomtom215/thalassa/internal/middleware"
	"github.com/tomtom215/thalassa/internal/models"
	"github.com/tomtom215/thalassa/internal/validation"
)

const (
	headerUserID    = "X-User-ID"
	anonymousUserID = "anonymous"

	maxRequestBodyBytes = 1 << 20
)

// respondJSON writes the standard response envelope. Successful GET
// responses get a weak ETag so polling clients can short-circuit on
// 304 at the proxy layer.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, queryStart time.Time) {
	resp := &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMs: time.Since(queryStart).Milliseconds(),
		},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Str("component", "api").Err(err).Msg("Failed to marshal response")
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet && status == http.StatusOK {
		h := fnv.New64a()
		_, _ = h.Write(body)
		w.Header().Set("ETag", fmt.Sprintf(`W/"%x"`, h.Sum64()))
		w.Header().Set("Cache-Control", "private, max-age=10")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}

	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	logging.Warn().
		Str("component", "api").
		Str("request_id", middleware.GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("code", code).
		Msg(message)

	resp := &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// decodeBody decodes and validates a JSON request body. A false return
// means the error response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return false
	}
	if err := validation.ValidateStruct(dst); err != nil {
		var details map[string]interface{}
		var verrs *validation.ValidationErrors
		if errors.As(err, &verrs) {
			details = verrs.Details()
		}
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed", details)
		return false
	}
	return true
}

func urlParamInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER",
			fmt.Sprintf("%s must be a positive integer", name), nil)
		return 0, false
	}
	return id, true
}

func queryBool(r *http.Request, name string, def bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryTime parses an RFC 3339 query parameter, returning the zero time
// when absent. A false return means the parameter was present but invalid.
func queryTime(r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func userIDFromRequest(r *http.Request) string {
	if uid := r.Header.Get(headerUserID); uid != "" {
		return uid
	}
	return anonymousUserID
}
