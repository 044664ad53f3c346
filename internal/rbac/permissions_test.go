package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permissionSet(role Role) map[Permission]struct{} {
	set := make(map[Permission]struct{})
	for _, p := range PermissionsForRole(role) {
		set[p] = struct{}{}
	}
	return set
}

func TestOwnerHoldsEveryPermission(t *testing.T) {
	owner := permissionSet(RoleOwner)
	require.Len(t, owner, 13)

	for _, role := range []Role{RoleAdmin, RoleViewer} {
		for _, p := range PermissionsForRole(role) {
			_, ok := owner[p]
			assert.True(t, ok, "owner missing %s granted to %s", p, role)
		}
	}
}

func TestAdminScope(t *testing.T) {
	admin := permissionSet(RoleAdmin)
	require.Len(t, admin, 8)

	assert.True(t, HasPermission(RoleAdmin, PermCreateUser, PermReadUser, PermUpdateUser))
	assert.True(t, HasPermission(RoleAdmin, PermCreateTask, PermReadTask, PermUpdateTask, PermDeleteTask))
	assert.True(t, HasPermission(RoleAdmin, PermReadOrganization))

	assert.False(t, HasPermission(RoleAdmin, PermDeleteUser))
	assert.False(t, HasPermission(RoleAdmin, PermCreateOrganization))
	assert.False(t, HasPermission(RoleAdmin, PermUpdateOrganization))
	assert.False(t, HasPermission(RoleAdmin, PermDeleteOrganization))
	assert.False(t, HasPermission(RoleAdmin, PermReadAuditLog))
}

func TestViewerScope(t *testing.T) {
	viewer := permissionSet(RoleViewer)
	require.Len(t, viewer, 4)

	assert.True(t, HasPermission(RoleViewer, PermReadUser, PermReadOrganization, PermReadTask))
	// Viewers keep the ability to file tasks after a downgrade.
	assert.True(t, HasPermission(RoleViewer, PermCreateTask))

	assert.False(t, HasPermission(RoleViewer, PermUpdateTask))
	assert.False(t, HasPermission(RoleViewer, PermDeleteTask))
	assert.False(t, HasPermission(RoleViewer, PermReadAuditLog))
}

func TestHasPermissionRequiresAll(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, PermReadTask, PermUpdateTask))
	assert.False(t, HasPermission(RoleAdmin, PermReadTask, PermReadAuditLog))
}

func TestHasPermissionEmptySet(t *testing.T) {
	assert.True(t, HasPermission(RoleViewer))
	assert.True(t, HasPermission(Role("ghost")))
}

func TestUnknownRoleDeniesEverything(t *testing.T) {
	assert.Nil(t, PermissionsForRole(Role("ghost")))
	assert.False(t, HasPermission(Role("ghost"), PermReadTask))
}

func TestPermissionsForRoleReturnsCopy(t *testing.T) {
	first := PermissionsForRole(RoleViewer)
	first[0] = Permission("mutated")
	second := PermissionsForRole(RoleViewer)
	assert.NotEqual(t, first[0], second[0])
}

func TestPermissionResource(t *testing.T) {
	assert.Equal(t, "task", PermCreateTask.Resource())
	assert.Equal(t, "organization", PermDeleteOrganization.Resource())
	assert.Equal(t, "audit_log", PermReadAuditLog.Resource())
}
