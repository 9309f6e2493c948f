package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/guard"
	"github.com/parkrow/propertyops/internal/maintenance"
	"github.com/parkrow/propertyops/internal/middleware"
	"github.com/parkrow/propertyops/internal/models"
)

// AnalyticsHandler exposes maintenance KPI, trend, and workload queries.
type AnalyticsHandler struct {
	service *maintenance.Service
	users   db.UserCollection
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service *maintenance.Service, users db.UserCollection) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, users: users}
}

// KPIs reduces the filtered request set to dashboard counters.
func (h *AnalyticsHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAnalyticsFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	if _, err := guard.Require(r.Context(), h.users, claims, models.RoleManager); err != nil {
		writeError(w, err)
		return
	}

	kpis, err := h.service.KPIs(r.Context(), *filter, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kpis)
}

// Trends returns day-bucketed created/completed counts. Defaults: 7-day
// buckets over the last 30 days.
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAnalyticsFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bucketDays := 7
	if v := r.URL.Query().Get("bucket_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			http.Error(w, fmt.Sprintf("invalid bucket_days %q", v), http.StatusBadRequest)
			return
		}
		bucketDays = n
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	if _, err := guard.Require(r.Context(), h.users, claims, models.RoleManager); err != nil {
		writeError(w, err)
		return
	}

	rangeEnd := time.Now()
	rangeStart := rangeEnd.Add(-30 * 24 * time.Hour)
	if filter.DateFrom != nil {
		rangeStart = *filter.DateFrom
	}
	if filter.DateTo != nil {
		rangeEnd = *filter.DateTo
	}
	// The trend range replaces the creation-date filter; bucketing clips to
	// the range itself.
	filter.DateFrom, filter.DateTo = nil, nil

	buckets, err := h.service.Trends(r.Context(), *filter, rangeStart, rangeEnd, bucketDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"buckets": buckets})
}

// Workload returns one row per field technician with their active
// assignment count, including technicians with zero assignments.
func (h *AnalyticsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	propertyID, err := parseOptionalObjectID(r.URL.Query().Get("property_id"), "property_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	if _, err := guard.Require(r.Context(), h.users, claims, models.RoleManager, models.RoleFieldTechnician); err != nil {
		writeError(w, err)
		return
	}

	rows, err := h.service.Workload(r.Context(), propertyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func parseAnalyticsFilter(r *http.Request) (*db.RequestFilter, error) {
	q := r.URL.Query()
	var filter db.RequestFilter
	var err error
	if filter.PropertyID, err = parseOptionalObjectID(q.Get("property_id"), "property_id"); err != nil {
		return nil, err
	}
	if filter.DateFrom, err = parseOptionalTime(q.Get("date_from"), "date_from"); err != nil {
		return nil, err
	}
	if filter.DateTo, err = parseOptionalTime(q.Get("date_to"), "date_to"); err != nil {
		return nil, err
	}
	return &filter, nil
}
