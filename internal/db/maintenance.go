package db

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/parkrow/propertyops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Requests *mongo.Collection
	Updates  *mongo.Collection
}

// InsertRequest inserts a maintenance request into the collection.
func (c *MongoMaintenanceCollection) InsertRequest(ctx context.Context, req models.MaintenanceRequest) (primitive.ObjectID, error) {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	_, err := c.Requests.InsertOne(ctx, req)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return req.ID, nil
}

// FindRequestByID finds a maintenance request by its ID.
func (c *MongoMaintenanceCollection) FindRequestByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid request ID: %w", ErrNotFound)
	}
	var req models.MaintenanceRequest
	err = c.Requests.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// indexPath names the single index used to drive a list query.
type indexPath string

const (
	pathPropertyStatus indexPath = "property_status"
	pathProperty       indexPath = "property"
	pathAssignedTo     indexPath = "assigned_to"
	pathStatus         indexPath = "status"
	pathPriority       indexPath = "priority"
	pathRequestType    indexPath = "request_type"
	pathUnit           indexPath = "unit"
	pathNone           indexPath = "none"
)

// SelectIndexPath picks the single most selective index for the populated
// filters, in precedence order (property+status) > property > assignedTo >
// status > priority > requestType > unit > none. It returns the Mongo match
// for the chosen index, a predicate for the remaining filters, and the path
// name.
func SelectIndexPath(f RequestFilter) (bson.M, func(*models.MaintenanceRequest) bool, string) {
	match := bson.M{}
	used := map[string]bool{}
	var path indexPath

	switch {
	case f.PropertyID != nil && f.Status != nil:
		path = pathPropertyStatus
		match["property_id"] = *f.PropertyID
		match["status"] = *f.Status
		used["property_id"], used["status"] = true, true
	case f.PropertyID != nil:
		path = pathProperty
		match["property_id"] = *f.PropertyID
		used["property_id"] = true
	case f.AssignedTo != nil:
		path = pathAssignedTo
		match["assigned_to"] = *f.AssignedTo
		used["assigned_to"] = true
	case f.Status != nil:
		path = pathStatus
		match["status"] = *f.Status
		used["status"] = true
	case f.Priority != nil:
		path = pathPriority
		match["priority"] = *f.Priority
		used["priority"] = true
	case f.RequestType != nil:
		path = pathRequestType
		match["request_type"] = *f.RequestType
		used["request_type"] = true
	case f.UnitID != nil:
		path = pathUnit
		match["unit_id"] = *f.UnitID
		used["unit_id"] = true
	default:
		path = pathNone
	}

	predicate := func(r *models.MaintenanceRequest) bool {
		if f.PropertyID != nil && !used["property_id"] && r.PropertyID != *f.PropertyID {
			return false
		}
		if f.Status != nil && !used["status"] && r.Status != *f.Status {
			return false
		}
		if f.AssignedTo != nil && !used["assigned_to"] && (r.AssignedTo == nil || *r.AssignedTo != *f.AssignedTo) {
			return false
		}
		if f.Priority != nil && !used["priority"] && r.Priority != *f.Priority {
			return false
		}
		if f.RequestType != nil && !used["request_type"] && r.RequestType != *f.RequestType {
			return false
		}
		if f.UnitID != nil && !used["unit_id"] && (r.UnitID == nil || *r.UnitID != *f.UnitID) {
			return false
		}
		if f.RequesterID != nil && r.RequesterID != *f.RequesterID {
			return false
		}
		if f.DateFrom != nil && r.CreatedAt.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && r.CreatedAt.After(*f.DateTo) {
			return false
		}
		return true
	}
	return match, predicate, string(path)
}

// pageCursor is the decoded form of the opaque continuation token.
type pageCursor struct {
	CreatedAt int64  `json:"c"` // unix millis of the last row on the previous page
	ID        string `json:"i"` // hex object id of that row
}

func encodeCursor(r *models.MaintenanceRequest) string {
	raw, _ := json.Marshal(pageCursor{CreatedAt: r.CreatedAt.UnixMilli(), ID: r.ID.Hex()})
	return base64.URLEncoding.EncodeToString(raw)
}

func decodeCursor(token string) (*pageCursor, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var c pageCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	return &c, nil
}

// ListRequests returns one page of requests matching the filter, descending
// by creation time. Residual filters run in memory while scanning the chosen
// index, so the scan keeps reading until the page fills or the index is
// exhausted.
func (c *MongoMaintenanceCollection) ListRequests(ctx context.Context, filter RequestFilter, cursor string, limit int) (*RequestPage, error) {
	if limit <= 0 {
		limit = 25
	}
	match, predicate, _ := SelectIndexPath(filter)

	if cursor != "" {
		decoded, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		lastID, err := primitive.ObjectIDFromHex(decoded.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		lastCreated := time.UnixMilli(decoded.CreatedAt)
		match["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": lastCreated}},
			bson.M{"created_at": lastCreated, "_id": bson.M{"$lt": lastID}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	mc, err := c.Requests.Find(ctx, match, opts)
	if err != nil {
		return nil, err
	}
	defer mc.Close(ctx)

	page := &RequestPage{Requests: []models.MaintenanceRequest{}}
	for mc.Next(ctx) {
		var req models.MaintenanceRequest
		if err := mc.Decode(&req); err != nil {
			return nil, err
		}
		if !predicate(&req) {
			continue
		}
		if len(page.Requests) == limit {
			// One matching row past the page proves there is more.
			page.ContinueCursor = encodeCursor(&page.Requests[limit-1])
			return page, mc.Err()
		}
		page.Requests = append(page.Requests, req)
	}
	if err := mc.Err(); err != nil {
		return nil, err
	}
	page.IsDone = true
	return page, nil
}

// ListAllRequests materializes the full filtered set, for aggregation.
func (c *MongoMaintenanceCollection) ListAllRequests(ctx context.Context, filter RequestFilter) ([]models.MaintenanceRequest, error) {
	match, predicate, _ := SelectIndexPath(filter)
	mc, err := c.Requests.Find(ctx, match, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer mc.Close(ctx)

	var out []models.MaintenanceRequest
	for mc.Next(ctx) {
		var req models.MaintenanceRequest
		if err := mc.Decode(&req); err != nil {
			return nil, err
		}
		if predicate(&req) {
			out = append(out, req)
		}
	}
	return out, mc.Err()
}

// PatchRequest applies a partial $set update to a request by its ID.
func (c *MongoMaintenanceCollection) PatchRequest(ctx context.Context, id string, set bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid request ID: %w", ErrNotFound)
	}
	result, err := c.Requests.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveAssignments counts a technician's non-terminal assigned
// requests, optionally scoped to one property.
func (c *MongoMaintenanceCollection) CountActiveAssignments(ctx context.Context, technicianID primitive.ObjectID, propertyID *primitive.ObjectID) (int64, error) {
	match := bson.M{
		"assigned_to": technicianID,
		"status": bson.M{"$nin": bson.A{
			models.StatusCompleted, models.StatusCancelled, models.StatusRejected,
		}},
	}
	if propertyID != nil {
		match["property_id"] = *propertyID
	}
	return c.Requests.CountDocuments(ctx, match)
}

// InsertUpdate appends an immutable audit-trail entry.
func (c *MongoMaintenanceCollection) InsertUpdate(ctx context.Context, update models.MaintenanceUpdate) error {
	if update.ID.IsZero() {
		update.ID = primitive.NewObjectID()
	}
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now()
	}
	_, err := c.Updates.InsertOne(ctx, update)
	return err
}

// ListUpdates returns a request's audit trail, oldest first.
func (c *MongoMaintenanceCollection) ListUpdates(ctx context.Context, requestID string) ([]models.MaintenanceUpdate, error) {
	objectID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid request ID: %w", ErrNotFound)
	}
	mc, err := c.Updates.Find(ctx, bson.M{"request_id": objectID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer mc.Close(ctx)

	var updates []models.MaintenanceUpdate
	if err := mc.All(ctx, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
