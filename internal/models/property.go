package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Property represents a managed building or complex.
type Property struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Address   string             `json:"address" bson:"address"`
	City      string             `json:"city" bson:"city"`
	State     string             `json:"state" bson:"state"`
	ZipCode   string             `json:"zip_code" bson:"zip_code"`
	ManagerID primitive.ObjectID `json:"manager_id" bson:"manager_id"`
	UnitCount int                `json:"unit_count" bson:"unit_count"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Unit represents a rentable unit within a property.
type Unit struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	PropertyID primitive.ObjectID  `json:"property_id" bson:"property_id"`
	UnitNumber string              `json:"unit_number" bson:"unit_number"`
	Floor      int                 `json:"floor,omitempty" bson:"floor,omitempty"`
	Bedrooms   int                 `json:"bedrooms,omitempty" bson:"bedrooms,omitempty"`
	Bathrooms  float64             `json:"bathrooms,omitempty" bson:"bathrooms,omitempty"`
	TenantID   *primitive.ObjectID `json:"tenant_id,omitempty" bson:"tenant_id,omitempty"`
	Status     string              `json:"status" bson:"status"` // "occupied", "vacant", "maintenance"
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" bson:"updated_at"`
}
