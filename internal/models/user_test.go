package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"manager role", RoleManager, true},
		{"tenant role", RoleTenant, true},
		{"vendor role", RoleVendor, true},
		{"field technician role", RoleFieldTechnician, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	manager := &User{Role: RoleManager}
	technician := &User{Role: RoleFieldTechnician}
	tenant := &User{Role: RoleTenant}
	vendor := &User{Role: RoleVendor}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		// Manager permissions - should have all permissions
		{"manager can view requests", manager, "view_requests", true},
		{"manager can create request", manager, "create_request", true},
		{"manager can view workload", manager, "view_workload", true},

		// Technician permissions - operational tasks on requests
		{"technician can view requests", technician, "view_requests", true},
		{"technician can update status", technician, "update_request_status", true},
		{"technician can update cost", technician, "update_request_cost", true},
		{"technician cannot create request", technician, "create_request", false},

		// Tenant permissions - own records only
		{"tenant can create request", tenant, "create_request", true},
		{"tenant can view own requests", tenant, "view_own_requests", true},
		{"tenant can create visitor pass", tenant, "create_visitor_pass", true},
		{"tenant cannot view all requests", tenant, "view_requests", false},
		{"tenant cannot update status", tenant, "update_request_status", false},

		// Vendor permissions - cost updates on visible requests
		{"vendor can view requests", vendor, "view_requests", true},
		{"vendor can update cost", vendor, "update_request_cost", true},
		{"vendor cannot update status", vendor, "update_request_status", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{"full name", User{FirstName: "Jo", LastName: "Reyes", Email: "jo@x.com"}, "Jo Reyes"},
		{"first only", User{FirstName: "Jo", Email: "jo@x.com"}, "Jo"},
		{"last only", User{LastName: "Reyes", Email: "jo@x.com"}, "Reyes"},
		{"email fallback", User{Email: "jo@x.com"}, "jo@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}
