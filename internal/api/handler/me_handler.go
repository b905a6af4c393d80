package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/service"
)

// MeHandler exposes the session store of the caller.
type MeHandler struct{}

func NewMeHandler() *MeHandler { return &MeHandler{} }

// Get returns the session state: the signed-in identity and the status of
// the last session operation.
//
// @Summary   Current session
// @Tags      me
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  service.SessionState
// @Failure   401  {object}  map[string]string
// @Router    /me [get]
func (h *MeHandler) Get(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Session.State())
}

// Update merges the patch into the session identity. The roster is not
// touched.
//
// @Summary   Update the session identity
// @Tags      me
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      domain.UserPatch  true  "Fields to change"
// @Success   200   {object}  service.SessionState
// @Failure   401   {object}  map[string]string
// @Failure   422   {object}  map[string]any
// @Router    /me [patch]
func (h *MeHandler) Update(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	var patch domain.UserPatch
	if err := bind(c, &patch); err != nil {
		return err
	}

	ws.Session.UpdateUser(patch)
	return c.JSON(http.StatusOK, ws.Session.State())
}

// DashboardHandler serves the overview page figures.
type DashboardHandler struct {
	recent int
}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{recent: 5} }

type dashboardResponse struct {
	TotalStaff          int                       `json:"total_staff"`
	RoleCounts          map[domain.Role]int       `json:"role_counts"`
	RecentActivity      []domain.ActivityLogEntry `json:"recent_activity"`
	UnreadMessages      int                       `json:"unread_messages"`
	UnreadNotifications int                       `json:"unread_notifications"`
	Conversations       int                       `json:"conversations"`
}

// Get returns role counts, the latest activity and unread counters.
//
// @Summary   Dashboard overview
// @Tags      dashboard
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  dashboardResponse
// @Failure   401  {object}  map[string]string
// @Router    /dashboard [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardOf(ws, h.recent))
}

func dashboardOf(ws *service.Workspace, recent int) dashboardResponse {
	counts := ws.Directory.CountByRole()
	total := 0
	for _, n := range counts {
		total += n
	}
	conv := ws.Conversations.State()

	return dashboardResponse{
		TotalStaff:          total,
		RoleCounts:          counts,
		RecentActivity:      ws.Directory.RecentActivity(recent),
		UnreadMessages:      conv.UnreadCount,
		UnreadNotifications: conv.UnreadNotifications,
		Conversations:       len(ws.Conversations.Conversations()),
	}
}
