package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// VisitorPassStatus is the lifecycle state of a visitor pass.
type VisitorPassStatus string

const (
	PassPending  VisitorPassStatus = "pending"
	PassApproved VisitorPassStatus = "approved"
	PassDenied   VisitorPassStatus = "denied"
	PassUsed     VisitorPassStatus = "used"
	PassExpired  VisitorPassStatus = "expired"
)

// IsValidVisitorPassStatus checks if a pass status is valid
func IsValidVisitorPassStatus(s VisitorPassStatus) bool {
	switch s {
	case PassPending, PassApproved, PassDenied, PassUsed, PassExpired:
		return true
	default:
		return false
	}
}

// VisitorPass represents a tenant-requested pass for a building visitor.
type VisitorPass struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	PropertyID   primitive.ObjectID  `json:"property_id" bson:"property_id"`
	UnitID       *primitive.ObjectID `json:"unit_id,omitempty" bson:"unit_id,omitempty"`
	RequesterID  primitive.ObjectID  `json:"requester_id" bson:"requester_id"`
	VisitorName  string              `json:"visitor_name" bson:"visitor_name"`
	VisitorPhone string              `json:"visitor_phone,omitempty" bson:"visitor_phone,omitempty"`
	Purpose      string              `json:"purpose,omitempty" bson:"purpose,omitempty"`
	ValidFrom    time.Time           `json:"valid_from" bson:"valid_from"`
	ValidUntil   time.Time           `json:"valid_until" bson:"valid_until"`
	Status       VisitorPassStatus   `json:"status" bson:"status"`
	ApprovedBy   *primitive.ObjectID `json:"approved_by,omitempty" bson:"approved_by,omitempty"`
	UsedAt       *time.Time          `json:"used_at,omitempty" bson:"used_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}
