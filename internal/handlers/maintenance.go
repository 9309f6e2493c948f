package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/guard"
	"github.com/parkrow/propertyops/internal/maintenance"
	"github.com/parkrow/propertyops/internal/middleware"
	"github.com/parkrow/propertyops/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceHandler exposes the maintenance request lifecycle over HTTP.
type MaintenanceHandler struct {
	service    *maintenance.Service
	users      db.UserCollection
	properties db.PropertyCollection
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(service *maintenance.Service, users db.UserCollection, properties db.PropertyCollection) *MaintenanceHandler {
	return &MaintenanceHandler{service: service, users: users, properties: properties}
}

// listQuery is the parsed and validated form of the list query string.
type listQuery struct {
	filter db.RequestFilter
	cursor string
	limit  int
	search string
}

func parseListQuery(r *http.Request) (*listQuery, error) {
	q := r.URL.Query()
	out := &listQuery{cursor: q.Get("cursor"), search: q.Get("search"), limit: 25}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return nil, fmt.Errorf("invalid limit %q", v)
		}
		out.limit = n
	}
	var err error
	if out.filter.PropertyID, err = parseOptionalObjectID(q.Get("property_id"), "property_id"); err != nil {
		return nil, err
	}
	if out.filter.UnitID, err = parseOptionalObjectID(q.Get("unit_id"), "unit_id"); err != nil {
		return nil, err
	}
	if out.filter.AssignedTo, err = parseOptionalObjectID(q.Get("assigned_to"), "assigned_to"); err != nil {
		return nil, err
	}
	if v := q.Get("status"); v != "" {
		status := models.RequestStatus(v)
		if !models.IsValidRequestStatus(status) {
			return nil, fmt.Errorf("invalid status %q", v)
		}
		out.filter.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority := models.Priority(v)
		if !models.IsValidPriority(priority) {
			return nil, fmt.Errorf("invalid priority %q", v)
		}
		out.filter.Priority = &priority
	}
	if v := q.Get("request_type"); v != "" {
		requestType := models.RequestType(v)
		if !models.IsValidRequestType(requestType) {
			return nil, fmt.Errorf("invalid request_type %q", v)
		}
		out.filter.RequestType = &requestType
	}
	if out.filter.DateFrom, err = parseOptionalTime(q.Get("date_from"), "date_from"); err != nil {
		return nil, err
	}
	if out.filter.DateTo, err = parseOptionalTime(q.Get("date_to"), "date_to"); err != nil {
		return nil, err
	}
	return out, nil
}

func parseOptionalObjectID(v, name string) (*primitive.ObjectID, error) {
	if v == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, v)
	}
	return &id, nil
}

func parseOptionalTime(v, name string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, v)
	}
	return &t, nil
}

// ListResponse is one denormalized page of requests.
type ListResponse struct {
	Page           []RequestView `json:"page"`
	IsDone         bool          `json:"is_done"`
	ContinueCursor string        `json:"continue_cursor,omitempty"`
}

// List returns a filtered, cursor-paginated, denormalized page of requests.
// The free-text search matches title, description, or requester name and is
// applied only to the already-paginated page, so a multi-page result set is
// not searched exhaustively; this bounds the scan cost per call.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	_, err = guard.Require(r.Context(), h.users, claims, models.RoleManager, models.RoleFieldTechnician)
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := h.service.List(r.Context(), query.filter, query.cursor, query.limit)
	if err != nil {
		writeError(w, err)
		return
	}
	views, err := denormalizeRequests(r.Context(), h.users, h.properties, page.Requests)
	if err != nil {
		writeError(w, err)
		return
	}
	if query.search != "" {
		views = filterPageBySearch(views, query.search)
	}
	writeJSON(w, http.StatusOK, ListResponse{
		Page:           views,
		IsDone:         page.IsDone,
		ContinueCursor: page.ContinueCursor,
	})
}

// filterPageBySearch keeps rows whose title, description, or requester name
// contains the term, case-insensitive.
func filterPageBySearch(views []RequestView, term string) []RequestView {
	term = strings.ToLower(term)
	out := make([]RequestView, 0, len(views))
	for _, v := range views {
		if strings.Contains(strings.ToLower(v.Title), term) ||
			strings.Contains(strings.ToLower(v.Description), term) ||
			strings.Contains(strings.ToLower(v.RequesterName), term) {
			out = append(out, v)
		}
	}
	return out
}

// MyRequests lists the calling tenant's own requests, denormalized.
func (h *MaintenanceHandler) MyRequests(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleTenant)
	if err != nil {
		writeError(w, err)
		return
	}
	query.filter.RequesterID = &user.ID

	page, err := h.service.List(r.Context(), query.filter, query.cursor, query.limit)
	if err != nil {
		writeError(w, err)
		return
	}
	views, err := denormalizeRequests(r.Context(), h.users, h.properties, page.Requests)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{
		Page:           views,
		IsDone:         page.IsDone,
		ContinueCursor: page.ContinueCursor,
	})
}

type createRequestBody struct {
	PropertyID          string   `json:"property_id"`
	UnitID              string   `json:"unit_id"`
	RequestType         string   `json:"request_type"`
	Priority            string   `json:"priority"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Location            string   `json:"location"`
	EstimatedCompletion string   `json:"estimated_completion"`
	PhotoURLs           []string `json:"photo_urls"`
}

// Create opens a new request in pending status. Tenants and managers may
// create requests.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := maintenance.CreateInput{
		Title:       strings.TrimSpace(body.Title),
		Description: strings.TrimSpace(body.Description),
		Location:    strings.TrimSpace(body.Location),
		PhotoURLs:   body.PhotoURLs,
	}
	if input.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	propertyID, err := parseOptionalObjectID(body.PropertyID, "property_id")
	if err != nil || propertyID == nil {
		http.Error(w, "valid property_id is required", http.StatusBadRequest)
		return
	}
	input.PropertyID = *propertyID
	if input.UnitID, err = parseOptionalObjectID(body.UnitID, "unit_id"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input.RequestType = models.RequestType(body.RequestType)
	if !models.IsValidRequestType(input.RequestType) {
		http.Error(w, "invalid request_type", http.StatusBadRequest)
		return
	}
	input.Priority = models.Priority(body.Priority)
	if !models.IsValidPriority(input.Priority) {
		http.Error(w, "invalid priority", http.StatusBadRequest)
		return
	}
	if input.EstimatedCompletion, err = parseOptionalTime(body.EstimatedCompletion, "estimated_completion"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleTenant, models.RoleManager)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.properties.FindPropertyByID(r.Context(), input.PropertyID.Hex()); err != nil {
		writeError(w, err)
		return
	}

	req, err := h.service.Create(r.Context(), user, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// Get returns a single request with its audit history.
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := h.service.Get(r.Context(), requestID)
	if err != nil {
		writeError(w, err)
		return
	}
	// Tenants may only see their own requests.
	if user.Role == models.RoleTenant && req.RequesterID != user.ID {
		writeError(w, guard.ErrForbidden)
		return
	}

	history, err := h.service.History(r.Context(), requestID)
	if err != nil {
		writeError(w, err)
		return
	}
	views, err := denormalizeRequests(r.Context(), h.users, h.properties, []models.MaintenanceRequest{*req})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request": views[0],
		"history": history,
	})
}

type assignBody struct {
	TechnicianID string `json:"technician_id"`
}

// Assign puts a field technician on a request.
func (h *MaintenanceHandler) Assign(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]
	var body assignBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.TechnicianID == "" {
		http.Error(w, "technician_id is required", http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleManager)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Assign(r.Context(), user, requestID, body.TechnicianID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusBody struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// UpdateStatus moves a request along its lifecycle.
func (h *MaintenanceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]
	var body statusBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status := models.RequestStatus(body.Status)
	if !models.IsValidRequestStatus(status) {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleManager, models.RoleFieldTechnician)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), user, requestID, status, body.Note); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkStatusBody struct {
	RequestIDs []string `json:"request_ids"`
	Status     string   `json:"status"`
	Note       string   `json:"note"`
}

// BulkUpdateStatus applies a status change to each id independently and
// returns a per-id result list.
func (h *MaintenanceHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body bulkStatusBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body.RequestIDs) == 0 {
		http.Error(w, "request_ids is required", http.StatusBadRequest)
		return
	}
	status := models.RequestStatus(body.Status)
	if !models.IsValidRequestStatus(status) {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleManager)
	if err != nil {
		writeError(w, err)
		return
	}

	results := h.service.BulkUpdateStatus(r.Context(), user, body.RequestIDs, status, body.Note)
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

type costBody struct {
	EstimatedCost *float64 `json:"estimated_cost"`
	ActualCost    *float64 `json:"actual_cost"`
	Note          string   `json:"note"`
}

// UpdateCost sets estimated/actual cost; each field is independently
// optional.
func (h *MaintenanceHandler) UpdateCost(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]
	var body costBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.EstimatedCost == nil && body.ActualCost == nil {
		http.Error(w, "estimated_cost or actual_cost is required", http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleManager, models.RoleFieldTechnician, models.RoleVendor)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.UpdateCost(r.Context(), user, requestID, body.EstimatedCost, body.ActualCost, body.Note); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads and unmarshals a JSON request body.
func decodeBody(r *http.Request, out interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid JSON")
	}
	return nil
}
