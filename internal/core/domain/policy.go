package domain

// Only OWNER and MANAGER administer the roster. No ordering is assumed
// among SUPERVISOR, DEVELOPER and SUPPORT.

// CanManageStaff reports whether role may see and use the create/delete actions.
func CanManageStaff(role Role) bool {
	return role == RoleOwner || role == RoleManager
}

// CanCreate reports whether actor may add a member with the given role.
func CanCreate(actor *User, role Role) bool {
	if actor == nil || !CanManageStaff(actor.Role) {
		return false
	}
	return role != RoleOwner || actor.Role == RoleOwner
}

// CanDelete reports whether actor may remove target from the roster.
func CanDelete(actor *User, target *StaffMember) bool {
	if actor == nil || target == nil || actor.ID == target.ID {
		return false
	}
	switch actor.Role {
	case RoleOwner:
		return true
	case RoleManager:
		return target.Role != RoleOwner
	default:
		return false
	}
}

// CanAssignRole reports whether actor may move target to role.
func CanAssignRole(actor *User, target *StaffMember, role Role) bool {
	if !CanDelete(actor, target) {
		return false
	}
	return role != RoleOwner || actor.Role == RoleOwner
}

// CanEdit reports whether actor may apply req to target. Members may edit
// their own profile fields but never their own status, permissions or role;
// every other edit follows the delete rule.
func CanEdit(actor *User, target *StaffMember, req StaffUpdateRequest) bool {
	if actor == nil || target == nil {
		return false
	}
	if actor.ID == target.ID {
		return req.IsActive == nil && req.Permissions == nil &&
			(req.Role == nil || *req.Role == target.Role)
	}
	return CanDelete(actor, target)
}
