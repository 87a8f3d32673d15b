package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/teamcal/internal/auth"
	"github.com/charlesng35/teamcal/internal/handlers"
	"github.com/charlesng35/teamcal/internal/middleware"
)

func registerAdminRoutes(api *gin.RouterGroup, handler *handlers.AdminHandler, sessions *iauth.AdminSessionService) {
	admin := api.Group("/admin")
	admin.POST("/login", handler.Login)
	admin.POST("/logout", handler.Logout)

	protected := admin.Group("")
	protected.Use(middleware.AdminSession(sessions))
	{
		protected.GET("/session", handler.Session)
		protected.GET("/teams", handler.ListTeams)
		protected.POST("/teams", handler.CreateTeam)
		protected.PATCH("/teams/:id", handler.RenameTeam)
		protected.DELETE("/teams/:id", handler.DeleteTeam)
		protected.GET("/security-audit", handler.SecurityAudit)
	}
}
