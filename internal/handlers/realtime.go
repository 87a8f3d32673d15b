package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/realtime"
	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
)

// RealtimeHandler upgrades HTTP connections into a team's invalidation stream. Viewers are
// anonymous: knowing the join code is enough to follow a team.
type RealtimeHandler struct {
	hub   *realtime.Hub
	teams *services.TeamService
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub, teams *services.TeamService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, teams: teams}
}

// GET /api/teams/:code/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	team, err := h.teams.FindByCode(requestContext(c), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.hub.Serve(realtime.TeamStream(team.Code), c.Writer, c.Request)
}
