package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// DeliveryStatus is the lifecycle state of a logged package.
type DeliveryStatus string

const (
	DeliveryLogged   DeliveryStatus = "logged"
	DeliveryNotified DeliveryStatus = "notified"
	DeliveryPickedUp DeliveryStatus = "picked_up"
)

// Delivery represents a package logged at the front desk for a unit.
type Delivery struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	PropertyID  primitive.ObjectID  `json:"property_id" bson:"property_id"`
	UnitID      primitive.ObjectID  `json:"unit_id" bson:"unit_id"`
	RecipientID *primitive.ObjectID `json:"recipient_id,omitempty" bson:"recipient_id,omitempty"`
	Carrier     string              `json:"carrier,omitempty" bson:"carrier,omitempty"`
	Description string              `json:"description,omitempty" bson:"description,omitempty"`
	Status      DeliveryStatus      `json:"status" bson:"status"`
	LoggedBy    primitive.ObjectID  `json:"logged_by" bson:"logged_by"`
	PickedUpAt  *time.Time          `json:"picked_up_at,omitempty" bson:"picked_up_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}
