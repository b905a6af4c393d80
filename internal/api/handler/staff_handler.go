package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/service"
)

// StaffHandler serves the roster and the activity log of the caller's
// directory store.
type StaffHandler struct{}

func NewStaffHandler() *StaffHandler { return &StaffHandler{} }

type staffListResponse struct {
	Staff  []domain.StaffMember `json:"staff"`
	Total  int                  `json:"total"`
	Status service.Status       `json:"status"`
}

type changeRoleRequest struct {
	Role domain.Role `json:"role" validate:"required,role"`
}

type activityResponse struct {
	Entries []domain.ActivityLogEntry `json:"entries"`
	Status  service.Status            `json:"status"`
}

// List returns the roster filtered by ?q= over name, username and email.
// ?refresh=true reloads it from the backend first.
//
// @Summary   List staff members
// @Tags      staff
// @Produce   json
// @Security  BearerAuth
// @Param     q        query     string  false  "Search text"
// @Param     refresh  query     bool    false  "Reload before filtering"
// @Success   200      {object}  staffListResponse
// @Failure   401      {object}  map[string]string
// @Router    /staff [get]
func (h *StaffHandler) List(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	if refresh, _ := strconv.ParseBool(c.QueryParam("refresh")); refresh {
		if err := ws.Directory.Load(requestContext(c)); err != nil {
			return err
		}
	}

	staff := ws.Directory.Search(c.QueryParam("q"))
	return c.JSON(http.StatusOK, staffListResponse{
		Staff:  staff,
		Total:  len(staff),
		Status: ws.Directory.State().Status,
	})
}

// Create adds a staff member. Only OWNER and MANAGER reach this handler.
//
// @Summary   Create a staff member
// @Tags      staff
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      domain.NewStaffMember  true  "New member"
// @Success   201   {object}  domain.StaffMember
// @Failure   403   {object}  map[string]string
// @Failure   422   {object}  map[string]any
// @Router    /staff [post]
func (h *StaffHandler) Create(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	var req domain.NewStaffMember
	if err := decode(c, &req); err != nil {
		return err
	}

	member, err := ws.Directory.CreateStaffMember(requestContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, member)
}

// Get returns one staff member from the loaded roster.
//
// @Summary   Get a staff member
// @Tags      staff
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Staff member id"
// @Success   200  {object}  domain.StaffMember
// @Failure   404  {object}  map[string]string
// @Router    /staff/{id} [get]
func (h *StaffHandler) Get(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	member, err := ws.Directory.Lookup(requestContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

// Update applies a partial update to a staff member.
//
// @Summary   Update a staff member
// @Tags      staff
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string                     true  "Staff member id"
// @Param     body  body      domain.StaffUpdateRequest  true  "Fields to change"
// @Success   200   {object}  domain.StaffMember
// @Failure   403   {object}  map[string]string
// @Failure   404   {object}  map[string]string
// @Failure   422   {object}  map[string]any
// @Router    /staff/{id} [patch]
func (h *StaffHandler) Update(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	var req domain.StaffUpdateRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	req.ID = c.Param("id")

	member, err := ws.Directory.UpdateStaffMember(requestContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

// Delete removes a staff member.
//
// @Summary   Delete a staff member
// @Tags      staff
// @Security  BearerAuth
// @Param     id   path  string  true  "Staff member id"
// @Success   204
// @Failure   403  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Router    /staff/{id} [delete]
func (h *StaffHandler) Delete(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	if err := ws.Directory.DeleteStaffMember(requestContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeRole moves a staff member to another role.
//
// @Summary   Change the role of a staff member
// @Tags      staff
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string             true  "Staff member id"
// @Param     body  body      changeRoleRequest  true  "New role"
// @Success   200   {object}  domain.StaffMember
// @Failure   403   {object}  map[string]string
// @Failure   404   {object}  map[string]string
// @Failure   422   {object}  map[string]any
// @Router    /staff/{id}/role [put]
func (h *StaffHandler) ChangeRole(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	var req changeRoleRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	member, err := ws.Directory.ChangeRole(requestContext(c), c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

// Contact returns the display metadata for an id, falling back to
// "Unknown User" when it does not resolve.
//
// @Summary   Resolve a contact
// @Tags      staff
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Staff member id"
// @Success   200  {object}  domain.Contact
// @Router    /staff/{id}/contact [get]
func (h *StaffHandler) Contact(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Directory.Resolve(requestContext(c), c.Param("id")))
}

// Activity fetches the activity log, optionally for one actor.
//
// @Summary   Activity log
// @Tags      activity
// @Produce   json
// @Security  BearerAuth
// @Param     staff_id  query     string  false  "Only entries by this actor"
// @Success   200       {object}  activityResponse
// @Failure   401       {object}  map[string]string
// @Router    /activity [get]
func (h *StaffHandler) Activity(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	entries, err := ws.Directory.GetActivityLogs(requestContext(c), c.QueryParam("staff_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activityResponse{
		Entries: entries,
		Status:  ws.Directory.State().Status,
	})
}

// Contacts lists the members the caller can write to, filtered by ?q=.
//
// @Summary   List contacts
// @Tags      staff
// @Produce   json
// @Security  BearerAuth
// @Param     q    query     string  false  "Search text"
// @Success   200  {array}   domain.Contact
// @Router    /contacts [get]
func (h *StaffHandler) Contacts(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	contacts := ws.Directory.Contacts(c.QueryParam("q"))
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	return c.JSON(http.StatusOK, contacts)
}
