package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleManager         Role = "manager"
	RoleTenant          Role = "tenant"
	RoleVendor          Role = "vendor"
	RoleFieldTechnician Role = "field_technician"
)

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Role         Role                `bson:"role" json:"role"`
	FirstName    string              `bson:"first_name" json:"first_name"`
	LastName     string              `bson:"last_name" json:"last_name"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	PropertyID   *primitive.ObjectID `bson:"property_id,omitempty" json:"property_id,omitempty"`
	UnitID       *primitive.ObjectID `bson:"unit_id,omitempty" json:"unit_id,omitempty"`
	IsActive     bool                `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// DisplayName returns the user's full name for denormalized views.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Exp    int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleManager, RoleTenant, RoleVendor, RoleFieldTechnician:
		return true
	default:
		return false
	}
}

// HasPermission checks if a user has permission for a specific action
func (u *User) HasPermission(action string) bool {
	switch u.Role {
	case RoleManager:
		return true
	case RoleFieldTechnician:
		return action == "view_requests" || action == "update_request_status" ||
			action == "update_request_cost" || action == "view_workload"
	case RoleTenant:
		return action == "create_request" || action == "view_own_requests" ||
			action == "create_visitor_pass" || action == "view_own_visitor_passes" ||
			action == "view_own_deliveries"
	case RoleVendor:
		return action == "view_requests" || action == "update_request_cost"
	default:
		return false
	}
}
