package handlers

import (
	"context"

	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestView is a request row enriched with requester, assignee, and unit
// display fields so clients need no follow-up lookups.
type RequestView struct {
	models.MaintenanceRequest
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email"`
	AssigneeName   string `json:"assignee_name,omitempty"`
	AssigneeEmail  string `json:"assignee_email,omitempty"`
	UnitNumber     string `json:"unit_number,omitempty"`
}

// denormalizeRequests joins user and unit records onto a page of requests.
// Reference ids are deduplicated across the page and fetched once per
// collection, then joined back through an id-keyed map.
func denormalizeRequests(ctx context.Context, users db.UserCollection, properties db.PropertyCollection, requests []models.MaintenanceRequest) ([]RequestView, error) {
	userIDs := make(map[primitive.ObjectID]bool)
	unitIDs := make(map[primitive.ObjectID]bool)
	for i := range requests {
		userIDs[requests[i].RequesterID] = true
		if requests[i].AssignedTo != nil {
			userIDs[*requests[i].AssignedTo] = true
		}
		if requests[i].UnitID != nil {
			unitIDs[*requests[i].UnitID] = true
		}
	}

	userByID := make(map[primitive.ObjectID]models.User, len(userIDs))
	if len(userIDs) > 0 {
		fetched, err := users.FindUsersByIDs(ctx, idList(userIDs))
		if err != nil {
			return nil, err
		}
		for i := range fetched {
			userByID[fetched[i].ID] = fetched[i]
		}
	}

	unitByID := make(map[primitive.ObjectID]models.Unit, len(unitIDs))
	if len(unitIDs) > 0 {
		fetched, err := properties.FindUnitsByIDs(ctx, idList(unitIDs))
		if err != nil {
			return nil, err
		}
		for i := range fetched {
			unitByID[fetched[i].ID] = fetched[i]
		}
	}

	views := make([]RequestView, 0, len(requests))
	for i := range requests {
		view := RequestView{MaintenanceRequest: requests[i]}
		if requester, ok := userByID[requests[i].RequesterID]; ok {
			view.RequesterName = requester.DisplayName()
			view.RequesterEmail = requester.Email
		}
		if requests[i].AssignedTo != nil {
			if assignee, ok := userByID[*requests[i].AssignedTo]; ok {
				view.AssigneeName = assignee.DisplayName()
				view.AssigneeEmail = assignee.Email
			}
		}
		if requests[i].UnitID != nil {
			if unit, ok := unitByID[*requests[i].UnitID]; ok {
				view.UnitNumber = unit.UnitNumber
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func idList(set map[primitive.ObjectID]bool) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
