package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
)

// TeamHandler serves the public team flows: create, join, admin code checks, rename and
// delete.
type TeamHandler struct {
	svc *services.TeamService
}

type createTeamRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Code      string `json:"code" validate:"required,max=32"`
	AdminCode string `json:"admin_code" validate:"required,max=64"`
}

type updateTeamRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	AdminCode string `json:"admin_code" validate:"required"`
}

type adminCodeRequest struct {
	AdminCode string `json:"admin_code" validate:"required"`
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(svc *services.TeamService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

// POST /api/teams
func (h *TeamHandler) Create(c *gin.Context) {
	var body createTeamRequest
	if !bindAndValidate(c, &body) {
		return
	}

	team, err := h.svc.Create(requestContext(c), services.CreateTeamInput{
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

// GET /api/teams/:code
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.svc.GetByCode(requestContext(c), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// POST /api/teams/:code/admin/verify
func (h *TeamHandler) VerifyAdminCode(c *gin.Context) {
	var body adminCodeRequest
	if !bindAndValidate(c, &body) {
		return
	}

	ok, err := h.svc.VerifyAdminCodeByCode(requestContext(c), c.Param("code"), body.AdminCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.Error(c, services.ErrInvalidAdminCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"valid": true})
}

// PATCH /api/teams/:code
func (h *TeamHandler) Update(c *gin.Context) {
	var body updateTeamRequest
	if !bindAndValidate(c, &body) {
		return
	}

	team, err := h.svc.UpdateByCode(requestContext(c), c.Param("code"), services.UpdateTeamInput{Name: body.Name}, body.AdminCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// DELETE /api/teams/:code
func (h *TeamHandler) Delete(c *gin.Context) {
	adminCode := strings.TrimSpace(c.GetHeader(AdminCodeHeader))
	if adminCode == "" {
		var body adminCodeRequest
		if !bindAndValidate(c, &body) {
			return
		}
		adminCode = body.AdminCode
	}
	if adminCode == "" {
		response.Error(c, errors.NewBadRequest("admin code is required"))
		return
	}

	if err := h.svc.DeleteByCode(requestContext(c), c.Param("code"), adminCode); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AdminCodeHeader may carry the team admin code on requests without a body.
const AdminCodeHeader = "X-Admin-Code"
