package auth

import (
	"time"

	"github.com/taskhive/taskhive/internal/rbac"
)

// User represents an authenticated user account, including the role and
// organization attributes the authorization layer consumes.
type User struct {
	ID             int64
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	Role           rbac.Role
	OrganizationID *int64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Identity converts the account into the actor shape used by policy
// checks.
func (u *User) Identity() rbac.Identity {
	return rbac.Identity{ID: u.ID, Role: u.Role, OrgID: u.OrganizationID}
}
