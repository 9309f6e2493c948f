package db

import (
	"context"
	"time"

	"github.com/parkrow/propertyops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestFilter holds the optional filters accepted by the list query.
// Exactly one index path is chosen from the populated fields; the rest are
// applied as an in-memory predicate while scanning the indexed result.
type RequestFilter struct {
	PropertyID  *primitive.ObjectID
	UnitID      *primitive.ObjectID
	RequesterID *primitive.ObjectID
	Status      *models.RequestStatus
	Priority    *models.Priority
	RequestType *models.RequestType
	AssignedTo  *primitive.ObjectID
	DateFrom    *time.Time
	DateTo      *time.Time
}

// RequestPage is one page of a cursor-paginated list, descending by
// creation time.
type RequestPage struct {
	Requests       []models.MaintenanceRequest
	IsDone         bool
	ContinueCursor string
}

// MaintenanceCollection defines the interface for maintenance request and
// audit-trail operations.
type MaintenanceCollection interface {
	InsertRequest(ctx context.Context, req models.MaintenanceRequest) (primitive.ObjectID, error)
	FindRequestByID(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter, cursor string, limit int) (*RequestPage, error)
	ListAllRequests(ctx context.Context, filter RequestFilter) ([]models.MaintenanceRequest, error)
	PatchRequest(ctx context.Context, id string, set bson.M) error
	CountActiveAssignments(ctx context.Context, technicianID primitive.ObjectID, propertyID *primitive.ObjectID) (int64, error)
	InsertUpdate(ctx context.Context, update models.MaintenanceUpdate) error
	ListUpdates(ctx context.Context, requestID string) ([]models.MaintenanceUpdate, error)
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, user models.User) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// PropertyCollection defines the interface for property and unit operations
type PropertyCollection interface {
	InsertProperty(ctx context.Context, property models.Property) (primitive.ObjectID, error)
	FindPropertyByID(ctx context.Context, id string) (*models.Property, error)
	InsertUnit(ctx context.Context, unit models.Unit) (primitive.ObjectID, error)
	FindUnitByID(ctx context.Context, id string) (*models.Unit, error)
	FindUnitsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Unit, error)
}

// VisitorCollection defines the interface for visitor pass operations
type VisitorCollection interface {
	InsertPass(ctx context.Context, pass models.VisitorPass) (primitive.ObjectID, error)
	FindPassByID(ctx context.Context, id string) (*models.VisitorPass, error)
	ListPassesByRequester(ctx context.Context, requesterID primitive.ObjectID) ([]models.VisitorPass, error)
	ListPassesByProperty(ctx context.Context, propertyID primitive.ObjectID, status *models.VisitorPassStatus) ([]models.VisitorPass, error)
	PatchPass(ctx context.Context, id string, set bson.M) error
}

// DeliveryCollection defines the interface for package delivery operations
type DeliveryCollection interface {
	InsertDelivery(ctx context.Context, delivery models.Delivery) (primitive.ObjectID, error)
	FindDeliveryByID(ctx context.Context, id string) (*models.Delivery, error)
	ListDeliveriesByProperty(ctx context.Context, propertyID primitive.ObjectID, status *models.DeliveryStatus) ([]models.Delivery, error)
	ListDeliveriesByRecipient(ctx context.Context, recipientID primitive.ObjectID) ([]models.Delivery, error)
	PatchDelivery(ctx context.Context, id string, set bson.M) error
}
