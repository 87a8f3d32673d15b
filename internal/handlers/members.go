package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
)

// MemberHandler manages the people of a team.
type MemberHandler struct {
	teams   *services.TeamService
	members *services.MemberService
}

type createMemberRequest struct {
	Nickname string `json:"nickname" validate:"required,max=50"`
	Color    string `json:"color" validate:"omitempty,membercolor"`
}

type updateMemberRequest struct {
	Nickname *string `json:"nickname" validate:"omitempty,max=50"`
	Color    *string `json:"color" validate:"omitempty,membercolor"`
}

// NewMemberHandler constructs a MemberHandler.
func NewMemberHandler(teams *services.TeamService, members *services.MemberService) *MemberHandler {
	return &MemberHandler{teams: teams, members: members}
}

// GET /api/teams/:code/members
func (h *MemberHandler) List(c *gin.Context) {
	ctx := requestContext(c)

	team, err := h.teams.FindByCode(ctx, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	members, err := h.members.ListByTeam(ctx, team.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, members, &response.Meta{Total: len(members)})
}

// POST /api/teams/:code/members
func (h *MemberHandler) Create(c *gin.Context) {
	var body createMemberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	ctx := requestContext(c)
	team, err := h.teams.FindByCode(ctx, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	member, err := h.members.Add(ctx, team.ID, body.Nickname, body.Color)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, member)
}

// PATCH /api/members/:id
func (h *MemberHandler) Update(c *gin.Context) {
	var body updateMemberRequest
	if !bindAndValidate(c, &body) {
		return
	}
	if body.Nickname == nil && body.Color == nil {
		response.Error(c, errors.NewBadRequest("no fields provided for update"))
		return
	}

	member, err := h.members.Update(requestContext(c), c.Param("id"), services.UpdateMemberInput{
		Nickname: body.Nickname,
		Color:    body.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, member)
}

// DELETE /api/members/:id
func (h *MemberHandler) Delete(c *gin.Context) {
	if err := h.members.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
