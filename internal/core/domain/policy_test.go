package domain

import "testing"

func staff(id string, role Role) *StaffMember {
	return &StaffMember{User: User{ID: id, Role: role}}
}

func TestCanDelete(t *testing.T) {
	owner := &User{ID: "1", Role: RoleOwner}
	manager := &User{ID: "2", Role: RoleManager}
	dev := &User{ID: "3", Role: RoleDeveloper}

	cases := []struct {
		name   string
		actor  *User
		target *StaffMember
		want   bool
	}{
		{"owner deletes manager", owner, staff("2", RoleManager), true},
		{"owner deletes other owner", owner, staff("9", RoleOwner), true},
		{"owner cannot delete self", owner, staff("1", RoleOwner), false},
		{"manager deletes developer", manager, staff("3", RoleDeveloper), true},
		{"manager cannot delete owner", manager, staff("1", RoleOwner), false},
		{"manager cannot delete self", manager, staff("2", RoleManager), false},
		{"developer cannot delete", dev, staff("4", RoleSupport), false},
		{"nil actor", nil, staff("4", RoleSupport), false},
		{"nil target", owner, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanDelete(tc.actor, tc.target); got != tc.want {
				t.Fatalf("CanDelete = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanAssignRole(t *testing.T) {
	owner := &User{ID: "1", Role: RoleOwner}
	manager := &User{ID: "2", Role: RoleManager}

	if !CanAssignRole(owner, staff("3", RoleDeveloper), RoleOwner) {
		t.Fatalf("owner should be able to grant OWNER")
	}
	if CanAssignRole(manager, staff("3", RoleDeveloper), RoleOwner) {
		t.Fatalf("manager must not grant OWNER")
	}
	if !CanAssignRole(manager, staff("3", RoleDeveloper), RoleSupervisor) {
		t.Fatalf("manager should be able to grant SUPERVISOR")
	}
	if CanAssignRole(manager, staff("1", RoleOwner), RoleSupport) {
		t.Fatalf("manager must not demote an owner")
	}
}

func TestCanEdit(t *testing.T) {
	owner := &User{ID: "1", Role: RoleOwner}
	manager := &User{ID: "2", Role: RoleManager}
	dev := &User{ID: "3", Role: RoleDeveloper}
	inactive := false
	name := "Renamed"
	perms := []string{"*"}
	same := RoleManager

	cases := []struct {
		name   string
		actor  *User
		target *StaffMember
		req    StaffUpdateRequest
		want   bool
	}{
		{"owner edits manager", owner, staff("2", RoleManager), StaffUpdateRequest{IsActive: &inactive}, true},
		{"manager renames developer", manager, staff("3", RoleDeveloper), StaffUpdateRequest{FirstName: &name}, true},
		{"manager cannot deactivate owner", manager, staff("1", RoleOwner), StaffUpdateRequest{IsActive: &inactive}, false},
		{"manager cannot rename owner", manager, staff("1", RoleOwner), StaffUpdateRequest{FirstName: &name}, false},
		{"manager cannot grant owner permissions", manager, staff("1", RoleOwner), StaffUpdateRequest{Permissions: &perms}, false},
		{"self rename", manager, staff("2", RoleManager), StaffUpdateRequest{FirstName: &name}, true},
		{"self unchanged role", manager, staff("2", RoleManager), StaffUpdateRequest{Role: &same}, true},
		{"self deactivation", owner, staff("1", RoleOwner), StaffUpdateRequest{IsActive: &inactive}, false},
		{"self permissions", manager, staff("2", RoleManager), StaffUpdateRequest{Permissions: &perms}, false},
		{"developer edits other", dev, staff("4", RoleSupport), StaffUpdateRequest{FirstName: &name}, false},
		{"nil actor", nil, staff("4", RoleSupport), StaffUpdateRequest{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanEdit(tc.actor, tc.target, tc.req); got != tc.want {
				t.Fatalf("CanEdit = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanCreate(t *testing.T) {
	if !CanCreate(&User{Role: RoleManager}, RoleSupport) {
		t.Fatalf("manager should create SUPPORT")
	}
	if CanCreate(&User{Role: RoleManager}, RoleOwner) {
		t.Fatalf("manager must not create OWNER")
	}
	if CanCreate(&User{Role: RoleSupervisor}, RoleSupport) {
		t.Fatalf("supervisor must not create staff")
	}
	if !CanCreate(&User{Role: RoleOwner}, RoleOwner) {
		t.Fatalf("owner should create OWNER")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range Roles {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("ADMIN").Valid() {
		t.Fatalf("ADMIN is not a role")
	}
}
