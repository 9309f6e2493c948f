package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// RequestType classifies what kind of work a maintenance request needs.
type RequestType string

const (
	RequestTypePlumbing   RequestType = "plumbing"
	RequestTypeElectrical RequestType = "electrical"
	RequestTypeHVAC       RequestType = "hvac"
	RequestTypeAppliance  RequestType = "appliance"
	RequestTypeGeneral    RequestType = "general"
	RequestTypeEmergency  RequestType = "emergency"
)

// Priority represents the urgency of a maintenance request.
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

// RequestStatus is the lifecycle state of a maintenance request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusAssigned   RequestStatus = "assigned"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
	StatusRejected   RequestStatus = "rejected"
)

// statusTransitions is the allowed next-state set per current state.
// The pipeline is monotonic (pending -> assigned -> in_progress -> completed);
// cancelled and rejected are terminal exits from any non-terminal state.
var statusTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:    {StatusAssigned, StatusInProgress, StatusCancelled, StatusRejected},
	StatusAssigned:   {StatusInProgress, StatusCompleted, StatusCancelled, StatusRejected},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusRejected},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusRejected:   {},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status ends the request lifecycle.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

// IsValidRequestType checks if a request type is valid
func IsValidRequestType(t RequestType) bool {
	switch t {
	case RequestTypePlumbing, RequestTypeElectrical, RequestTypeHVAC,
		RequestTypeAppliance, RequestTypeGeneral, RequestTypeEmergency:
		return true
	default:
		return false
	}
}

// IsValidPriority checks if a priority is valid
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	default:
		return false
	}
}

// IsValidRequestStatus checks if a status is valid
func IsValidRequestStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

// MaintenanceRequest represents a tenant or manager maintenance request.
// Requests are never hard-deleted; they exit via cancelled or rejected.
type MaintenanceRequest struct {
	ID                  primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	PropertyID          primitive.ObjectID  `json:"property_id" bson:"property_id"`
	UnitID              *primitive.ObjectID `json:"unit_id,omitempty" bson:"unit_id,omitempty"`
	RequesterID         primitive.ObjectID  `json:"requester_id" bson:"requester_id"`
	RequestType         RequestType         `json:"request_type" bson:"request_type"`
	Priority            Priority            `json:"priority" bson:"priority"`
	Title               string              `json:"title" bson:"title"`
	Description         string              `json:"description" bson:"description"`
	Location            string              `json:"location,omitempty" bson:"location,omitempty"`
	Status              RequestStatus       `json:"status" bson:"status"`
	AssignedTo          *primitive.ObjectID `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	AssignedAt          *time.Time          `json:"assigned_at,omitempty" bson:"assigned_at,omitempty"`
	EstimatedCost       *float64            `json:"estimated_cost,omitempty" bson:"estimated_cost,omitempty"` // in USD
	ActualCost          *float64            `json:"actual_cost,omitempty" bson:"actual_cost,omitempty"`
	EstimatedCompletion *time.Time          `json:"estimated_completion,omitempty" bson:"estimated_completion,omitempty"`
	ActualCompletion    *time.Time          `json:"actual_completion,omitempty" bson:"actual_completion,omitempty"`
	PhotoURLs           []string            `json:"photo_urls,omitempty" bson:"photo_urls,omitempty"`
	DocumentURLs        []string            `json:"document_urls,omitempty" bson:"document_urls,omitempty"`
	TenantApproved      *bool               `json:"tenant_approved,omitempty" bson:"tenant_approved,omitempty"`
	TenantApprovedAt    *time.Time          `json:"tenant_approved_at,omitempty" bson:"tenant_approved_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at" bson:"updated_at"`
}

// MaintenanceUpdate is an immutable audit-trail entry. One is written for
// every mutation that changes a request's status, assignment, or cost.
type MaintenanceUpdate struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RequestID   primitive.ObjectID `json:"request_id" bson:"request_id"`
	PropertyID  primitive.ObjectID `json:"property_id" bson:"property_id"` // denormalized for filtering
	Status      RequestStatus      `json:"status" bson:"status"`
	Description string             `json:"description" bson:"description"`
	UpdatedBy   primitive.ObjectID `json:"updated_by" bson:"updated_by"`
	PhotoURLs   []string           `json:"photo_urls,omitempty" bson:"photo_urls,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
