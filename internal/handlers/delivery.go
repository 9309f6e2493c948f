package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/guard"
	"github.com/parkrow/propertyops/internal/middleware"
	"github.com/parkrow/propertyops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// DeliveryHandler handles package logging and pickup.
type DeliveryHandler struct {
	deliveries db.DeliveryCollection
	users      db.UserCollection
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(deliveries db.DeliveryCollection, users db.UserCollection) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries, users: users}
}

type logDeliveryBody struct {
	PropertyID  string `json:"property_id"`
	UnitID      string `json:"unit_id"`
	RecipientID string `json:"recipient_id"`
	Carrier     string `json:"carrier"`
	Description string `json:"description"`
}

// Log records a package arrival at the front desk.
func (h *DeliveryHandler) Log(w http.ResponseWriter, r *http.Request) {
	var body logDeliveryBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	propertyID, err := parseOptionalObjectID(body.PropertyID, "property_id")
	if err != nil || propertyID == nil {
		http.Error(w, "valid property_id is required", http.StatusBadRequest)
		return
	}
	unitID, err := parseOptionalObjectID(body.UnitID, "unit_id")
	if err != nil || unitID == nil {
		http.Error(w, "valid unit_id is required", http.StatusBadRequest)
		return
	}
	recipientID, err := parseOptionalObjectID(body.RecipientID, "recipient_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleManager)
	if err != nil {
		writeError(w, err)
		return
	}

	delivery := models.Delivery{
		PropertyID:  *propertyID,
		UnitID:      *unitID,
		RecipientID: recipientID,
		Carrier:     body.Carrier,
		Description: body.Description,
		Status:      models.DeliveryLogged,
		LoggedBy:    user.ID,
	}
	id, err := h.deliveries.InsertDelivery(r.Context(), delivery)
	if err != nil {
		writeError(w, err)
		return
	}
	delivery.ID = id
	writeJSON(w, http.StatusCreated, delivery)
}

// ListMine returns the calling tenant's deliveries.
func (h *DeliveryHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleTenant)
	if err != nil {
		writeError(w, err)
		return
	}

	deliveries, err := h.deliveries.ListDeliveriesByRecipient(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deliveries)
}

// ListByProperty returns a property's deliveries for managers.
func (h *DeliveryHandler) ListByProperty(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	propertyID, err := parseOptionalObjectID(q.Get("property_id"), "property_id")
	if err != nil || propertyID == nil {
		http.Error(w, "valid property_id is required", http.StatusBadRequest)
		return
	}
	var status *models.DeliveryStatus
	if v := q.Get("status"); v != "" {
		s := models.DeliveryStatus(v)
		switch s {
		case models.DeliveryLogged, models.DeliveryNotified, models.DeliveryPickedUp:
			status = &s
		default:
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	if _, err := guard.Require(r.Context(), h.users, claims, models.RoleManager); err != nil {
		writeError(w, err)
		return
	}

	deliveries, err := h.deliveries.ListDeliveriesByProperty(r.Context(), *propertyID, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deliveries)
}

// MarkPickedUp records that the recipient collected the package.
func (h *DeliveryHandler) MarkPickedUp(w http.ResponseWriter, r *http.Request) {
	deliveryID := mux.Vars(r)["id"]

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleManager, models.RoleTenant)
	if err != nil {
		writeError(w, err)
		return
	}

	delivery, err := h.deliveries.FindDeliveryByID(r.Context(), deliveryID)
	if err != nil {
		writeError(w, err)
		return
	}
	if delivery.Status == models.DeliveryPickedUp {
		http.Error(w, "delivery already picked up", http.StatusConflict)
		return
	}
	// Tenants may only collect their own packages.
	if user.Role == models.RoleTenant &&
		(delivery.RecipientID == nil || *delivery.RecipientID != user.ID) {
		writeError(w, guard.ErrForbidden)
		return
	}

	now := time.Now()
	err = h.deliveries.PatchDelivery(r.Context(), deliveryID, bson.M{
		"status":       models.DeliveryPickedUp,
		"picked_up_at": now,
		"updated_at":   now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
