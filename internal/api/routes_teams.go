package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/handlers"
)

type teamRouteHandlers struct {
	teams     *handlers.TeamHandler
	members   *handlers.MemberHandler
	schedules *handlers.ScheduleHandler
	events    *handlers.EventHandler
	calendar  *handlers.CalendarHandler
	export    *handlers.ExportHandler
	realtime  *handlers.RealtimeHandler
}

func registerTeamRoutes(api *gin.RouterGroup, h teamRouteHandlers) {
	api.POST("/teams", h.teams.Create)

	team := api.Group("/teams/:code")
	{
		team.GET("", h.teams.Get)
		team.PATCH("", h.teams.Update)
		team.DELETE("", h.teams.Delete)
		team.POST("/admin/verify", h.teams.VerifyAdminCode)

		team.GET("/members", h.members.List)
		team.POST("/members", h.members.Create)
		team.POST("/schedules", h.schedules.Create)
		team.POST("/events", h.events.Create)

		team.GET("/calendar", h.calendar.View)
		team.GET("/calendar.ics", h.export.ICS)
		team.GET("/qr.png", h.export.QRCode)
		team.GET("/stream", h.realtime.Stream)
	}

	members := api.Group("/members")
	{
		members.PATCH("/:id", h.members.Update)
		members.DELETE("/:id", h.members.Delete)
	}

	schedules := api.Group("/schedules")
	{
		schedules.PATCH("/:id", h.schedules.Update)
		schedules.DELETE("/:id", h.schedules.Delete)
	}

	events := api.Group("/events")
	{
		events.PATCH("/:id", h.events.Update)
		events.DELETE("/:id", h.events.Delete)
	}
}
