package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

func TestStaffHandler_List_Filters(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewStaffHandler()

	c, rec := newContext(http.MethodGet, "/staff?q=jane", "", ws)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp staffListResponse
	decodeBody(t, rec, &resp)
	if resp.Total != 1 || resp.Staff[0].Username != "manager1" {
		t.Fatalf("unexpected result: %+v", resp)
	}
}

func TestStaffHandler_Create(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "manager1")
	h := NewStaffHandler()

	body := `{"username":"support1","email":"support1@example.com","role":"SUPPORT","password":"Password1!","confirm_password":"Password1!"}`
	c, rec := newContext(http.MethodPost, "/staff", body, ws)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var member map[string]any
	decodeBody(t, rec, &member)
	if member["username"] != "support1" || member["created_by"] != "2" {
		t.Fatalf("unexpected member: %+v", member)
	}
	if _, leaked := member["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestStaffHandler_Create_ReportsFieldErrors(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewStaffHandler()

	body := `{"username":"manager1","email":"bad","password":"short","confirm_password":"other"}`
	c, _ := newContext(http.MethodPost, "/staff", body, ws)
	fields, ok := domain.AsFieldErrors(h.Create(c))
	if !ok {
		t.Fatalf("expected field errors")
	}
	for _, key := range []string{"username", "email", "password", "confirm_password"} {
		if fields[key] == "" {
			t.Fatalf("missing field error for %s: %v", key, fields)
		}
	}
}

func TestStaffHandler_Create_ManagerCannotCreateOwner(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "manager1")
	h := NewStaffHandler()

	body := `{"username":"boss","email":"boss@example.com","role":"OWNER","password":"Password1!","confirm_password":"Password1!"}`
	c, _ := newContext(http.MethodPost, "/staff", body, ws)
	if err := h.Create(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestStaffHandler_Get_NotFound(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewStaffHandler()

	c, _ := newContext(http.MethodGet, "/staff/99", "", ws)
	if err := h.Get(withParam(c, "id", "99")); !errors.Is(err, domain.ErrStaffNotFound) {
		t.Fatalf("expected ErrStaffNotFound, got %v", err)
	}
}

func TestStaffHandler_Update_UsesPathID(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewStaffHandler()

	c, rec := newContext(http.MethodPatch, "/staff/3", `{"id":"2","position":"Staff Engineer"}`, ws)
	if err := h.Update(withParam(c, "id", "3")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	member, ok := ws.Directory.GetStaffMember("3")
	if !ok || member.Position != "Staff Engineer" {
		t.Fatalf("update not applied to member 3: %+v", member)
	}
	manager, _ := ws.Directory.GetStaffMember("2")
	if manager.Position != "Senior Manager" {
		t.Fatalf("body id must not select the target")
	}
}

func TestStaffHandler_ChangeRole(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewStaffHandler()

	c, rec := newContext(http.MethodPut, "/staff/3/role", `{"role":"SUPERVISOR"}`, ws)
	if err := h.ChangeRole(withParam(c, "id", "3")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := ws.Directory.RecentActivity(1); len(got) != 1 || got[0].Action != domain.ActionChangeRole {
		t.Fatalf("expected CHANGE_ROLE entry first, got %+v", got)
	}
}

func TestStaffHandler_Delete_Self(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewStaffHandler()

	c, _ := newContext(http.MethodDelete, "/staff/1", "", ws)
	if err := h.Delete(withParam(c, "id", "1")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestStaffHandler_Contact_Unknown(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewStaffHandler()

	c, rec := newContext(http.MethodGet, "/staff/42/contact", "", ws)
	if err := h.Contact(withParam(c, "id", "42")); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var contact domain.Contact
	decodeBody(t, rec, &contact)
	if contact.Name != domain.UnknownUserName {
		t.Fatalf("expected Unknown User, got %q", contact.Name)
	}
}

func TestStaffHandler_Activity(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewStaffHandler()

	c, rec := newContext(http.MethodGet, "/activity?staff_id=2", "", ws)
	if err := h.Activity(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp activityResponse
	decodeBody(t, rec, &resp)
	for _, e := range resp.Entries {
		if e.ActorID != "2" {
			t.Fatalf("entry from another actor: %+v", e)
		}
	}
	if len(resp.Entries) == 0 {
		t.Fatalf("expected entries for actor 2")
	}
}
