package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/api"
	"github.com/charlesng35/teamcal/internal/app"
	"github.com/charlesng35/teamcal/internal/app/maintenance"
	iauth "github.com/charlesng35/teamcal/internal/auth"
	"github.com/charlesng35/teamcal/internal/cache"
	"github.com/charlesng35/teamcal/internal/database"
	"github.com/charlesng35/teamcal/internal/middleware"
	"github.com/charlesng35/teamcal/internal/monitoring"
	"github.com/charlesng35/teamcal/internal/monitoring/checks"
	"github.com/charlesng35/teamcal/internal/realtime"
	"github.com/charlesng35/teamcal/internal/security"
	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/logger"
	"github.com/charlesng35/teamcal/web"
)

const probeTimeout = 3 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Redis      *cache.RedisStore
	Store      cache.Store
	Hub        *realtime.Hub
	Cleaner    *maintenance.Cleaner
	Monitoring *monitoring.Module
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, cache, services and the HTTP router.
// generated reports which secrets ApplyRuntimeDefaults created for this run.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, generated map[string]bool, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	secret, err := database.ResolveSessionSecret(ctx, stack.DB, cfg.Admin.SessionSecret, generated["admin.session_secret"])
	if err != nil {
		return nil, fmt.Errorf("resolve admin session secret: %w", err)
	}
	cfg.Admin.SessionSecret = secret

	dbStore := cache.NewDatabaseStore(stack.DB)
	stack.Store = dbStore
	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(err))
			stack.Redis = nil
		} else {
			stack.Store = stack.Redis
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	stack.Hub = realtime.NewHub(realtime.WithAllowedOrigins(cfg.Server.CORS.AllowedOrigins...))
	svc, err := initialiseServices(stack.DB, stack.Store, stack.Hub, cfg.Cache.CalendarTTL)
	if err != nil {
		return nil, err
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Admin.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}
	sessions, err := iauth.NewAdminSessionService(jwtSvc, cfg.Admin.Credentials())
	if err != nil {
		return nil, fmt.Errorf("initialise admin sessions: %w", err)
	}
	if !sessions.Enabled() {
		log.Warn("site admin console disabled; set admin.username and admin.password to enable it")
	}

	stack.Cleaner = maintenance.NewCleaner(stack.DB, dbStore, maintenance.WithCacheSchedule(cfg.Maintenance.CachePurgeSchedule))
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Monitoring = monitoring.NewModule(monitoring.Options{Version: version})
	registerHealthChecks(stack)

	audit := security.NewAuditService(stack.DB, cfg)
	for _, check := range audit.Run(ctx).Failing() {
		log.Warn("security audit", zap.String("check", check.ID), zap.String("status", string(check.Status)), zap.String("message", check.Message))
	}

	static, err := web.FS()
	if err != nil {
		return nil, fmt.Errorf("load embedded ui: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:     cfg,
		Services:   svc,
		Sessions:   sessions,
		Hub:        stack.Hub,
		Monitoring: stack.Monitoring,
		RateStore:  middleware.NewStoreRateStore(stack.Store),
		Audit:      audit,
		Static:     static,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func initialiseServices(db *gorm.DB, store cache.Store, hub *realtime.Hub, calendarTTL time.Duration) (api.Services, error) {
	signal := services.NewTeamSignal(store, hub)

	var (
		out  api.Services
		errs error
		err  error
	)
	out.Teams, err = services.NewTeamService(db, signal)
	errs = multierr.Append(errs, err)
	out.Members, err = services.NewMemberService(db, signal)
	errs = multierr.Append(errs, err)
	out.Schedules, err = services.NewScheduleService(db, signal)
	errs = multierr.Append(errs, err)
	out.Events, err = services.NewEventService(db, signal)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return api.Services{}, fmt.Errorf("initialise services: %w", errs)
	}

	out.Calendar, err = services.NewCalendarService(out.Schedules, out.Events, store, calendarTTL)
	if err != nil {
		return api.Services{}, fmt.Errorf("initialise calendar service: %w", err)
	}
	return out, nil
}

func registerHealthChecks(stack *runtimeStack) {
	health := stack.Monitoring.Health()
	health.RegisterReadiness(checks.Database(stack.DB, probeTimeout))
	if stack.Redis != nil {
		health.RegisterReadiness(checks.Redis(stack.Redis, probeTimeout))
	}
	health.RegisterReadiness(checks.Maintenance(stack.Cleaner, 0))
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Hub != nil {
		s.Hub.Close()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}
