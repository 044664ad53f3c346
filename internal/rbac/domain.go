package rbac

import "strings"

// Role is a named bundle of permissions assigned to an actor.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Permission is an atomic allowed action on a resource kind.
type Permission string

const (
	PermCreateUser Permission = "create_user"
	PermReadUser   Permission = "read_user"
	PermUpdateUser Permission = "update_user"
	PermDeleteUser Permission = "delete_user"

	PermCreateOrganization Permission = "create_organization"
	PermReadOrganization   Permission = "read_organization"
	PermUpdateOrganization Permission = "update_organization"
	PermDeleteOrganization Permission = "delete_organization"

	PermCreateTask Permission = "create_task"
	PermReadTask   Permission = "read_task"
	PermUpdateTask Permission = "update_task"
	PermDeleteTask Permission = "delete_task"

	PermReadAuditLog Permission = "read_audit_log"
)

// Resource returns the resource kind a permission applies to,
// e.g. "task" for create_task and "audit_log" for read_audit_log.
func (p Permission) Resource() string {
	s := string(p)
	if idx := strings.Index(s, "_"); idx >= 0 && idx+1 < len(s) {
		return s[idx+1:]
	}
	return s
}

// Identity describes the authenticated actor for a request. OrgID is nil
// when the actor is not affiliated with any organization.
type Identity struct {
	ID    int64
	Role  Role
	OrgID *int64
}
