package users

import (
	"time"

	"github.com/taskhive/taskhive/internal/rbac"
)

// User represents a user account for management views. The password hash
// never leaves the auth module.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Role           rbac.Role `json:"role"`
	OrganizationID *int64    `json:"organizationId,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
