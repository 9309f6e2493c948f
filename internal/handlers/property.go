package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/guard"
	"github.com/parkrow/propertyops/internal/middleware"
	"github.com/parkrow/propertyops/internal/models"
)

// PropertyHandler handles property and unit management.
type PropertyHandler struct {
	properties db.PropertyCollection
	users      db.UserCollection
}

// NewPropertyHandler creates a new property handler.
func NewPropertyHandler(properties db.PropertyCollection, users db.UserCollection) *PropertyHandler {
	return &PropertyHandler{properties: properties, users: users}
}

type createPropertyBody struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

// Create registers a new property managed by the caller.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createPropertyBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Address) == "" {
		http.Error(w, "name and address are required", http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	user, err := guard.Require(r.Context(), h.users, claims, models.RoleManager)
	if err != nil {
		writeError(w, err)
		return
	}

	property := models.Property{
		Name:      strings.TrimSpace(body.Name),
		Address:   strings.TrimSpace(body.Address),
		City:      body.City,
		State:     body.State,
		ZipCode:   body.ZipCode,
		ManagerID: user.ID,
	}
	id, err := h.properties.InsertProperty(r.Context(), property)
	if err != nil {
		writeError(w, err)
		return
	}
	property.ID = id
	writeJSON(w, http.StatusCreated, property)
}

// Get returns one property.
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetUserFromContext(r.Context())
	if _, err := guard.Require(r.Context(), h.users, claims); err != nil {
		writeError(w, err)
		return
	}

	property, err := h.properties.FindPropertyByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

type createUnitBody struct {
	UnitNumber string  `json:"unit_number"`
	Floor      int     `json:"floor"`
	Bedrooms   int     `json:"bedrooms"`
	Bathrooms  float64 `json:"bathrooms"`
}

// CreateUnit adds a unit to a property.
func (h *PropertyHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	propertyID := mux.Vars(r)["id"]
	var body createUnitBody
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.UnitNumber) == "" {
		http.Error(w, "unit_number is required", http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	if _, err := guard.Require(r.Context(), h.users, claims, models.RoleManager); err != nil {
		writeError(w, err)
		return
	}

	property, err := h.properties.FindPropertyByID(r.Context(), propertyID)
	if err != nil {
		writeError(w, err)
		return
	}

	unit := models.Unit{
		PropertyID: property.ID,
		UnitNumber: strings.TrimSpace(body.UnitNumber),
		Floor:      body.Floor,
		Bedrooms:   body.Bedrooms,
		Bathrooms:  body.Bathrooms,
		Status:     "vacant",
	}
	id, err := h.properties.InsertUnit(r.Context(), unit)
	if err != nil {
		writeError(w, err)
		return
	}
	unit.ID = id
	writeJSON(w, http.StatusCreated, unit)
}
