package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/guard"
	"github.com/parkrow/propertyops/internal/middleware"
	"github.com/parkrow/propertyops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// VisitorHandler handles visitor pass requests and approvals.
type VisitorHandler struct {
	passes db.VisitorCollection
	users  db.UserCollection
}

// NewVisitorHandler creates a new visitor pass handler.
func NewVisitorHandler(passes db.VisitorCollection, users db.UserCollection) *VisitorHandler {
	return &VisitorHandler{passes: passes, users: users}
}

type createPassBody struct {
	PropertyID   string `json:"property_id"`
	UnitID       string `json:"unit_id"`
	VisitorName  string `json:"visitor_name"`
	VisitorPhone string `json:"visitor_phone"`
	Purpose      string `json:"purpose"`
	ValidFrom    string `json:"valid_from"`
	ValidUntil   string `json:"valid_until"`
}

// Create opens a pending pass for a visitor.
func (h *VisitorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createPassBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.VisitorName) == "" {
		http.Error(w, "visitor_name is required", http.StatusBadRequest)
		return
	}
	propertyID, err := parseOptionalObjectID(body.PropertyID, "property_id")
	if err != nil || propertyID == nil {
		http.Error(w, "valid property_id is required", http.StatusBadRequest)
		return
	}
	unitID, err := parseOptionalObjectID(body.UnitID, "unit_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	validFrom, err := parseOptionalTime(body.ValidFrom, "valid_from")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	validUntil, err := parseOptionalTime(body.ValidUntil, "valid_until")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if validFrom == nil || validUntil == nil || !validUntil.After(*validFrom) {
		http.Error(w, "valid_from must precede valid_until", http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleTenant, models.RoleManager)
	if err != nil {
		writeError(w, err)
		return
	}

	pass := models.VisitorPass{
		PropertyID:   *propertyID,
		UnitID:       unitID,
		RequesterID:  user.ID,
		VisitorName:  strings.TrimSpace(body.VisitorName),
		VisitorPhone: body.VisitorPhone,
		Purpose:      body.Purpose,
		ValidFrom:    *validFrom,
		ValidUntil:   *validUntil,
		Status:       models.PassPending,
	}
	id, err := h.passes.InsertPass(r.Context(), pass)
	if err != nil {
		writeError(w, err)
		return
	}
	pass.ID = id
	writeJSON(w, http.StatusCreated, pass)
}

// ListMine returns the calling tenant's passes.
func (h *VisitorHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleTenant)
	if err != nil {
		writeError(w, err)
		return
	}

	passes, err := h.passes.ListPassesByRequester(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, passes)
}

// ListByProperty returns a property's passes for managers.
func (h *VisitorHandler) ListByProperty(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	propertyID, err := parseOptionalObjectID(q.Get("property_id"), "property_id")
	if err != nil || propertyID == nil {
		http.Error(w, "valid property_id is required", http.StatusBadRequest)
		return
	}
	var status *models.VisitorPassStatus
	if v := q.Get("status"); v != "" {
		s := models.VisitorPassStatus(v)
		if !models.IsValidVisitorPassStatus(s) {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		status = &s
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	if _, err := guard.Require(r.Context(), h.users, claims, models.RoleManager); err != nil {
		writeError(w, err)
		return
	}

	passes, err := h.passes.ListPassesByProperty(r.Context(), *propertyID, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, passes)
}

type decidePassBody struct {
	Approve bool `json:"approve"`
}

// Decide approves or denies a pending pass.
func (h *VisitorHandler) Decide(w http.ResponseWriter, r *http.Request) {
	passID := mux.Vars(r)["id"]
	var body decidePassBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleManager)
	if err != nil {
		writeError(w, err)
		return
	}

	pass, err := h.passes.FindPassByID(r.Context(), passID)
	if err != nil {
		writeError(w, err)
		return
	}
	if pass.Status != models.PassPending {
		http.Error(w, "pass is not pending", http.StatusConflict)
		return
	}

	status := models.PassDenied
	if body.Approve {
		status = models.PassApproved
	}
	err = h.passes.PatchPass(r.Context(), passID, bson.M{
		"status":      status,
		"approved_by": user.ID,
		"updated_at":  time.Now(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkUsed records that an approved pass was presented at the door.
func (h *VisitorHandler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	passID := mux.Vars(r)["id"]

	claims, _ := middleware.GetUserFromContext(r.Context())
	if _, err := guard.Require(r.Context(), h.users, claims, models.RoleManager); err != nil {
		writeError(w, err)
		return
	}

	pass, err := h.passes.FindPassByID(r.Context(), passID)
	if err != nil {
		writeError(w, err)
		return
	}
	if pass.Status != models.PassApproved {
		http.Error(w, "pass is not approved", http.StatusConflict)
		return
	}

	now := time.Now()
	err = h.passes.PatchPass(r.Context(), passID, bson.M{
		"status":     models.PassUsed,
		"used_at":    now,
		"updated_at": now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
