package api

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/app"
	iauth "github.com/charlesng35/teamcal/internal/auth"
	"github.com/charlesng35/teamcal/internal/handlers"
	"github.com/charlesng35/teamcal/internal/middleware"
	"github.com/charlesng35/teamcal/internal/monitoring"
	"github.com/charlesng35/teamcal/internal/realtime"
	"github.com/charlesng35/teamcal/internal/security"
	"github.com/charlesng35/teamcal/internal/services"
)

// Services groups the domain services the HTTP layer delegates to.
type Services struct {
	Teams     *services.TeamService
	Members   *services.MemberService
	Schedules *services.ScheduleService
	Events    *services.EventService
	Calendar  *services.CalendarService
}

// Dependencies carries everything NewRouter wires into handlers.
type Dependencies struct {
	Config     *app.Config
	Services   Services
	Sessions   *iauth.AdminSessionService
	Hub        *realtime.Hub
	Monitoring *monitoring.Module
	RateStore  middleware.RateStore
	// Audit reports the security posture to the site admin; nil audits configuration only.
	Audit *security.AuditService
	// Static serves the browser UI; nil disables it.
	Static fs.FS
	// Clock overrides the current time, mainly in tests.
	Clock handlers.Clock
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	svc := deps.Services
	if svc.Teams == nil || svc.Members == nil || svc.Schedules == nil || svc.Events == nil || svc.Calendar == nil {
		return nil, fmt.Errorf("all domain services must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("admin session service must be provided")
	}

	cfg := deps.Config
	loc, err := cfg.Server.Location()
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowedOrigins))

	registerHealthRoutes(r, cfg, deps.Monitoring)
	registerMetricsRoute(r, cfg, deps.Monitoring)

	api := r.Group("/api")
	if cfg.Server.CSRF.Enabled {
		api.Use(middleware.CSRF(middleware.WithCSRFExempt(middleware.PublicFeedRoutes...)))
	}
	if cfg.Server.RateLimit.Enabled {
		api.Use(middleware.RateLimit(deps.RateStore, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))
	}

	registerTeamRoutes(api, teamRouteHandlers{
		teams:     handlers.NewTeamHandler(svc.Teams),
		members:   handlers.NewMemberHandler(svc.Teams, svc.Members),
		schedules: handlers.NewScheduleHandler(svc.Teams, svc.Schedules),
		events:    handlers.NewEventHandler(svc.Teams, svc.Events),
		calendar:  handlers.NewCalendarHandler(svc.Teams, svc.Calendar, loc, deps.Clock),
		export:    handlers.NewExportHandler(svc.Teams, svc.Schedules, svc.Events, cfg.Server.BaseURL, loc, deps.Clock),
		realtime:  handlers.NewRealtimeHandler(deps.Hub, svc.Teams),
	})
	audit := deps.Audit
	if audit == nil {
		audit = security.NewAuditService(nil, cfg)
	}
	registerAdminRoutes(api, handlers.NewAdminHandler(deps.Sessions, svc.Teams, audit), deps.Sessions)

	// NotFound fallback: JSON under /api, the UI everywhere else.
	r.NoRoute(staticHandler(deps.Static))

	return r, nil
}

func metricsEndpoint(cfg *app.Config) string {
	endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		return "/metrics"
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return endpoint
}

func registerMetricsRoute(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	if !cfg.Monitoring.Prometheus.Enabled || mon == nil {
		return
	}
	r.GET(metricsEndpoint(cfg), gin.WrapH(mon.Handler()))
}
