// Package maintenance implements the request lifecycle: creation,
// assignment, status transitions, cost updates, and the audit trail that
// records every state change.
//
// Each mutation is two independent writes (patch the request, append the
// audit entry) with no cross-document transaction, matching the store's
// per-document atomicity. A crash between the writes can leave an updated
// request with a missing audit entry; callers get at-least-the-patch
// semantics.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parkrow/propertyops/internal/db"
	"github.com/parkrow/propertyops/internal/models"
	"github.com/parkrow/propertyops/internal/notify"
	"github.com/parkrow/propertyops/internal/stats"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidTechnician means an assignment target lacks the
	// field_technician role.
	ErrInvalidTechnician = errors.New("invalid technician")
	// ErrInvalidTransition means the requested status change is not allowed
	// from the request's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Service coordinates maintenance request operations over the store.
type Service struct {
	requests  db.MaintenanceCollection
	users     db.UserCollection
	publisher notify.Publisher
}

// NewService creates a maintenance service.
func NewService(requests db.MaintenanceCollection, users db.UserCollection, publisher notify.Publisher) *Service {
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	return &Service{requests: requests, users: users, publisher: publisher}
}

// CreateInput carries the fields a requester supplies for a new request.
type CreateInput struct {
	PropertyID          primitive.ObjectID
	UnitID              *primitive.ObjectID
	RequestType         models.RequestType
	Priority            models.Priority
	Title               string
	Description         string
	Location            string
	EstimatedCompletion *time.Time
	PhotoURLs           []string
}

// Create inserts a new request in pending status and writes the first audit
// entry.
func (s *Service) Create(ctx context.Context, actor *models.User, input CreateInput) (*models.MaintenanceRequest, error) {
	now := time.Now()
	req := models.MaintenanceRequest{
		ID:                  primitive.NewObjectID(),
		PropertyID:          input.PropertyID,
		UnitID:              input.UnitID,
		RequesterID:         actor.ID,
		RequestType:         input.RequestType,
		Priority:            input.Priority,
		Title:               input.Title,
		Description:         input.Description,
		Location:            input.Location,
		Status:              models.StatusPending,
		EstimatedCompletion: input.EstimatedCompletion,
		PhotoURLs:           input.PhotoURLs,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err := s.requests.InsertRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to insert request: %w", err)
	}
	s.appendAudit(ctx, &req, actor.ID, "Request created")
	s.publisher.PublishRequestEvent(notify.EventRequestCreated, &req)
	return &req, nil
}

// Get returns one request by id.
func (s *Service) Get(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	return s.requests.FindRequestByID(ctx, id)
}

// List returns one page of requests for the filter, descending by creation
// time.
func (s *Service) List(ctx context.Context, filter db.RequestFilter, cursor string, limit int) (*db.RequestPage, error) {
	return s.requests.ListRequests(ctx, filter, cursor, limit)
}

// History returns a request's audit trail, oldest first.
func (s *Service) History(ctx context.Context, requestID string) ([]models.MaintenanceUpdate, error) {
	if _, err := s.requests.FindRequestByID(ctx, requestID); err != nil {
		return nil, err
	}
	return s.requests.ListUpdates(ctx, requestID)
}

// Assign sets a field technician on a request and moves it to assigned.
// Fails with ErrInvalidTechnician when the target user does not hold the
// field_technician role; no audit entry is written in that case.
func (s *Service) Assign(ctx context.Context, actor *models.User, requestID, technicianID string) error {
	req, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return err
	}

	technician, err := s.users.FindUserByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrInvalidTechnician
		}
		return err
	}
	if technician.Role != models.RoleFieldTechnician {
		return ErrInvalidTechnician
	}
	if !models.CanTransition(req.Status, models.StatusAssigned) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, models.StatusAssigned)
	}

	now := time.Now()
	err = s.requests.PatchRequest(ctx, requestID, bson.M{
		"assigned_to": technician.ID,
		"assigned_at": now,
		"status":      models.StatusAssigned,
		"updated_at":  now,
	})
	if err != nil {
		return err
	}

	req.AssignedTo = &technician.ID
	req.AssignedAt = &now
	req.Status = models.StatusAssigned
	req.UpdatedAt = now
	s.appendAudit(ctx, req, actor.ID, fmt.Sprintf("Assigned to %s", technician.DisplayName()))
	s.publisher.PublishRequestEvent(notify.EventRequestAssigned, req)
	return nil
}

// UpdateStatus moves a request to a new status. Completed additionally sets
// the actual completion timestamp.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, requestID string, status models.RequestStatus, note string) error {
	req, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if !models.CanTransition(req.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, status)
	}

	now := time.Now()
	set := bson.M{
		"status":     status,
		"updated_at": now,
	}
	if status == models.StatusCompleted {
		set["actual_completion"] = now
		req.ActualCompletion = &now
	}
	if err := s.requests.PatchRequest(ctx, requestID, set); err != nil {
		return err
	}

	req.Status = status
	req.UpdatedAt = now
	if note == "" {
		note = fmt.Sprintf("Status set to %s", status)
	}
	s.appendAudit(ctx, req, actor.ID, note)
	s.publisher.PublishRequestEvent(notify.EventStatusChanged, req)
	return nil
}

// BulkResult reports one id's outcome from a bulk operation.
type BulkResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkUpdateStatus applies UpdateStatus to each id independently and reports
// a per-id outcome; one failure neither stops nor rolls back the rest.
func (s *Service) BulkUpdateStatus(ctx context.Context, actor *models.User, requestIDs []string, status models.RequestStatus, note string) []BulkResult {
	results := make([]BulkResult, 0, len(requestIDs))
	for _, id := range requestIDs {
		if err := s.UpdateStatus(ctx, actor, id, status, note); err != nil {
			results = append(results, BulkResult{ID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ID: id, OK: true})
	}
	return results
}

// UpdateCost sets estimated and/or actual cost; omitting either leaves it
// unchanged.
func (s *Service) UpdateCost(ctx context.Context, actor *models.User, requestID string, estimatedCost, actualCost *float64, note string) error {
	req, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return err
	}

	now := time.Now()
	set := bson.M{"updated_at": now}
	if estimatedCost != nil {
		set["estimated_cost"] = *estimatedCost
		req.EstimatedCost = estimatedCost
	}
	if actualCost != nil {
		set["actual_cost"] = *actualCost
		req.ActualCost = actualCost
	}
	if err := s.requests.PatchRequest(ctx, requestID, set); err != nil {
		return err
	}

	req.UpdatedAt = now
	if note == "" {
		note = "Cost updated"
	}
	s.appendAudit(ctx, req, actor.ID, note)
	return nil
}

// KPIs materializes the full filtered set and reduces it.
func (s *Service) KPIs(ctx context.Context, filter db.RequestFilter, now time.Time) (stats.KPIs, error) {
	requests, err := s.requests.ListAllRequests(ctx, filter)
	if err != nil {
		return stats.KPIs{}, err
	}
	return stats.ComputeKPIs(requests, now), nil
}

// Trends materializes the filtered set and buckets it by creation and
// completion time.
func (s *Service) Trends(ctx context.Context, filter db.RequestFilter, rangeStart, rangeEnd time.Time, bucketDays int) ([]stats.TrendBucket, error) {
	requests, err := s.requests.ListAllRequests(ctx, filter)
	if err != nil {
		return nil, err
	}
	return stats.ComputeTrends(requests, rangeStart, rangeEnd, bucketDays), nil
}

// WorkloadRow is one technician's active assignment count.
type WorkloadRow struct {
	UserID            string `json:"user_id"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	ActiveAssignments int64  `json:"active_assignments"`
}

// Workload enumerates every field technician and counts their non-terminal
// assigned requests, optionally scoped to one property. Technicians with
// zero assignments still get a row.
func (s *Service) Workload(ctx context.Context, propertyID *primitive.ObjectID) ([]WorkloadRow, error) {
	technicians, err := s.users.FindUsersByRole(ctx, models.RoleFieldTechnician)
	if err != nil {
		return nil, err
	}

	rows := make([]WorkloadRow, 0, len(technicians))
	for i := range technicians {
		t := &technicians[i]
		count, err := s.requests.CountActiveAssignments(ctx, t.ID, propertyID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, WorkloadRow{
			UserID:            t.ID.Hex(),
			FirstName:         t.FirstName,
			LastName:          t.LastName,
			ActiveAssignments: count,
		})
	}
	return rows, nil
}

// appendAudit writes the audit entry for a mutation. The write is
// best-effort relative to the already-committed patch; a failure is logged
// and the mutation still reports success.
func (s *Service) appendAudit(ctx context.Context, req *models.MaintenanceRequest, updatedBy primitive.ObjectID, description string) {
	update := models.MaintenanceUpdate{
		ID:          primitive.NewObjectID(),
		RequestID:   req.ID,
		PropertyID:  req.PropertyID,
		Status:      req.Status,
		Description: description,
		UpdatedBy:   updatedBy,
		CreatedAt:   time.Now(),
	}
	if err := s.requests.InsertUpdate(ctx, update); err != nil {
		log.WithError(err).WithField("request_id", req.ID.Hex()).
			Error("failed to append maintenance update")
	}
}
