package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/teamcal/internal/auth"
	"github.com/charlesng35/teamcal/internal/middleware"
	"github.com/charlesng35/teamcal/internal/security"
	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
)

// AdminHandler serves the site admin console: session management and team management
// across all tenants.
type AdminHandler struct {
	sessions *iauth.AdminSessionService
	teams    *services.TeamService
	audit    *security.AuditService
}

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type adminCreateTeamRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Code      string `json:"code" validate:"required,max=32"`
	AdminCode string `json:"admin_code" validate:"omitempty,max=64"`
}

type adminRenameTeamRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// NewAdminHandler constructs an AdminHandler. audit may be nil.
func NewAdminHandler(sessions *iauth.AdminSessionService, teams *services.TeamService, audit *security.AuditService) *AdminHandler {
	return &AdminHandler{sessions: sessions, teams: teams, audit: audit}
}

// POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var body adminLoginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	session, err := h.sessions.Login(body.Username, body.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	setSessionCookie(c, session.Token, int(h.sessions.TTL().Seconds()))
	if err := middleware.RotateCSRFToken(c); err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// POST /api/admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	setSessionCookie(c, "", -1)
	if err := middleware.RotateCSRFToken(c); err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GET /api/admin/session
func (h *AdminHandler) Session(c *gin.Context) {
	session, ok := currentAdminSession(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// GET /api/admin/teams?search=
func (h *AdminHandler) ListTeams(c *gin.Context) {
	teams, err := h.teams.List(requestContext(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, teams, &response.Meta{Total: len(teams)})
}

// POST /api/admin/teams
func (h *AdminHandler) CreateTeam(c *gin.Context) {
	var body adminCreateTeamRequest
	if !bindAndValidate(c, &body) {
		return
	}

	team, err := h.teams.AdminCreate(requestContext(c), services.CreateTeamInput{
		Name:      body.Name,
		Code:      body.Code,
		AdminCode: body.AdminCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, team)
}

// PATCH /api/admin/teams/:id
func (h *AdminHandler) RenameTeam(c *gin.Context) {
	var body adminRenameTeamRequest
	if !bindAndValidate(c, &body) {
		return
	}

	team, err := h.teams.AdminRename(requestContext(c), c.Param("id"), body.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// DELETE /api/admin/teams/:id
func (h *AdminHandler) DeleteTeam(c *gin.Context) {
	if err := h.teams.AdminDelete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/admin/security-audit
func (h *AdminHandler) SecurityAudit(c *gin.Context) {
	if h.audit == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, h.audit.Run(requestContext(c)))
}

func currentAdminSession(c *gin.Context) (*iauth.Session, bool) {
	value, ok := c.Get(middleware.CtxAdminSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*iauth.Session)
	return session, ok && session != nil
}

// setSessionCookie writes the HttpOnly, SameSite=Lax admin cookie. It is marked Secure when
// the request arrived over TLS, directly or through a proxy.
func setSessionCookie(c *gin.Context, token string, maxAge int) {
	secure := c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(iauth.SessionCookieName, token, maxAge, "/", "", secure, true)
}
