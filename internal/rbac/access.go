package rbac

// CanAccessOrganization decides whether an actor may see or modify a
// resource scoped to targetOrgID. Owners have global visibility across
// organizations; admins and viewers are confined to their own. Two nil
// organization IDs match: unaffiliated actors and resources share one
// implicit scope.
func CanAccessOrganization(role Role, actorOrgID, targetOrgID *int64) bool {
	if role == RoleOwner {
		return true
	}
	if actorOrgID == nil || targetOrgID == nil {
		return actorOrgID == nil && targetOrgID == nil
	}
	return *actorOrgID == *targetOrgID
}

// CanAccessTask decides whether an actor may access a task owned by the
// organization of its creator. Task access is pure organization-scope
// evaluation; there is no task-specific rule.
func CanAccessTask(role Role, actorOrgID, creatorOrgID *int64) bool {
	return CanAccessOrganization(role, actorOrgID, creatorOrgID)
}
