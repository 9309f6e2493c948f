package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/guard"
	"github.com/parkrow/propertyops/internal/maintenance"
	log "github.com/sirupsen/logrus"
)

// writeJSON encodes a response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.WithError(err).Error("failed to encode response")
		}
	}
}

// writeError maps domain errors onto HTTP statuses. Anything unmapped is a
// 500 with a generic message; the cause goes to the log, not the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, guard.ErrUnauthorized):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, guard.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, maintenance.ErrInvalidTechnician):
		http.Error(w, "Assignee is not a field technician", http.StatusBadRequest)
	case errors.Is(err, maintenance.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.WithError(err).Error("internal error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
