package handler

import (
	"net/http"
	"testing"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

func TestMeHandler_Get(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")

	c, rec := newContext(http.MethodGet, "/me", "", ws)
	if err := NewMeHandler().Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["is_authenticated"] != true {
		t.Fatalf("expected authenticated session: %+v", resp)
	}
	if user, _ := resp["user"].(map[string]any); user["username"] != "DD403" {
		t.Fatalf("unexpected user: %+v", resp["user"])
	}
}

func TestMeHandler_Update(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")

	c, _ := newContext(http.MethodPatch, "/me", `{"email":"nope"}`, ws)
	if _, ok := domain.AsFieldErrors(NewMeHandler().Update(c)); !ok {
		t.Fatalf("expected field errors for invalid email")
	}

	c, rec := newContext(http.MethodPatch, "/me", `{"first_name":"Ada"}`, ws)
	if err := NewMeHandler().Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	user, _ := ws.Session.CurrentUser()
	if user.FirstName != "Ada" || user.LastName != "User" {
		t.Fatalf("patch not merged: %+v", user)
	}
	if member, _ := ws.Directory.GetStaffMember("1"); member.FirstName != "Admin" {
		t.Fatalf("roster must not change")
	}
}

func TestDashboardHandler_Get(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")

	c, rec := newContext(http.MethodGet, "/dashboard", "", ws)
	if err := NewDashboardHandler().Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp dashboardResponse
	decodeBody(t, rec, &resp)
	if resp.TotalStaff != 3 || resp.RoleCounts[domain.RoleManager] != 1 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if resp.UnreadMessages != 1 || resp.UnreadNotifications != 2 || resp.Conversations != 2 {
		t.Fatalf("unexpected unread figures: %+v", resp)
	}
	if len(resp.RecentActivity) == 0 || len(resp.RecentActivity) > 5 {
		t.Fatalf("unexpected recent activity: %d", len(resp.RecentActivity))
	}
}

func TestCtxWorkspace_Missing(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/me", "", nil)
	if err := NewMeHandler().Get(c); err == nil {
		t.Fatalf("expected error without a workspace")
	}
}
