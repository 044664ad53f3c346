package rbac

// rolePermissions is the fixed role → permission matrix. It is data, not
// branching logic, so the granted sets stay diffable against the access
// policy documentation. Note that viewers deliberately hold create_task;
// downgrading a user to viewer keeps their ability to file tasks.
var rolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermCreateUser,
		PermReadUser,
		PermUpdateUser,
		PermDeleteUser,
		PermCreateOrganization,
		PermReadOrganization,
		PermUpdateOrganization,
		PermDeleteOrganization,
		PermCreateTask,
		PermReadTask,
		PermUpdateTask,
		PermDeleteTask,
		PermReadAuditLog,
	},
	RoleAdmin: {
		PermCreateUser,
		PermReadUser,
		PermUpdateUser,
		PermReadOrganization,
		PermCreateTask,
		PermReadTask,
		PermUpdateTask,
		PermDeleteTask,
	},
	RoleViewer: {
		PermReadUser,
		PermReadOrganization,
		PermReadTask,
		PermCreateTask,
	},
}

// PermissionsForRole returns a copy of the permission set granted to role.
// Unknown roles yield an empty set, which callers must treat as deny-all.
func PermissionsForRole(role Role) []Permission {
	granted, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	perms := make([]Permission, len(granted))
	copy(perms, granted)
	return perms
}

// HasPermission reports whether role holds every permission in required.
// An empty required set is trivially satisfied.
func HasPermission(role Role, required ...Permission) bool {
	granted := rolePermissions[role]
	set := make(map[Permission]struct{}, len(granted))
	for _, p := range granted {
		set[p] = struct{}{}
	}
	for _, p := range required {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}
