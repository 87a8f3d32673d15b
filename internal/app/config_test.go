package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamcal/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "console", cfg.Server.LogFormat)
	require.Equal(t, "https://cal.example.com", cfg.Server.BaseURL)
	require.True(t, cfg.Server.CSRF.Enabled)
	require.Equal(t, []string{"https://cal.example.com", "https://admin.example.com"}, cfg.Server.CORS.AllowedOrigins)
	require.Equal(t, 30, cfg.Server.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, 20, cfg.Database.MaxOpenConns)
	require.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.example.com:6380", cfg.Cache.Redis.Address)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.Equal(t, 2*time.Second, cfg.Cache.Redis.Timeout)
	require.Equal(t, 90*time.Second, cfg.Cache.CalendarTTL)

	require.Equal(t, "operator", cfg.Admin.Username)
	require.Equal(t, "file-secret", cfg.Admin.SessionSecret)
	require.Equal(t, 12*time.Hour, cfg.Admin.SessionTTL)
	require.NotEmpty(t, cfg.Admin.PasswordHash)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/internal/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.True(t, cfg.Monitoring.Health.Enabled, "defaults fill sections missing from the file")

	require.Equal(t, "@hourly", cfg.Maintenance.CachePurgeSchedule)

	loc, err := cfg.Server.Location()
	require.NoError(t, err)
	require.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/teamcal.sqlite", cfg.Database.Path)
	require.Equal(t, 5*time.Minute, cfg.Cache.CalendarTTL)
	require.Equal(t, 24*time.Hour, cfg.Admin.SessionTTL)
	require.Equal(t, "@every 15m", cfg.Maintenance.CachePurgeSchedule)
	require.True(t, cfg.Server.RateLimit.Enabled)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("TEAMCAL_SERVER_PORT", "7070")
	t.Setenv("TEAMCAL_ADMIN_USERNAME", "envadmin")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "envadmin", cfg.Admin.Username)
}

func TestServerLocation(t *testing.T) {
	loc, err := ServerConfig{}.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)

	_, err = ServerConfig{Timezone: "Mars/Olympus"}.Location()
	require.Error(t, err)
}

func TestAdminConfigAdapters(t *testing.T) {
	cfg := AdminConfig{
		Username:      " admin ",
		Password:      "pw",
		PasswordHash:  " hash ",
		SessionSecret: "secret",
		SessionTTL:    time.Hour,
	}

	require.Equal(t, auth.JWTConfig{Secret: "secret", Issuer: auth.DefaultIssuer, TTL: time.Hour}, cfg.JWTServiceConfig())
	require.Equal(t, auth.AdminConfig{Username: "admin", Password: "pw", PasswordHash: "hash"}, cfg.Credentials())

	var empty AdminConfig
	require.Equal(t, auth.DefaultSessionTTL, empty.JWTServiceConfig().TTL)
}

func TestDatabaseConnectionConfig(t *testing.T) {
	sqlite := DatabaseConfig{Path: " ./data/x.sqlite "}.ConnectionConfig()
	require.Equal(t, "sqlite", sqlite.Driver)
	require.Equal(t, "./data/x.sqlite", sqlite.Path)
	require.Empty(t, sqlite.Host)

	pg := DatabaseConfig{
		Driver:   "PostgreSQL",
		Postgres: DBAuthConfig{Host: "db", Port: 5432, Database: "cal", Username: "u", Password: "p"},
		MySQL:    DBAuthConfig{Host: "ignored"},
	}.ConnectionConfig()
	require.Equal(t, "postgres", pg.Driver)
	require.Equal(t, "db", pg.Host)
	require.Equal(t, "cal", pg.Name)
	require.Equal(t, "u", pg.User)

	my := DatabaseConfig{Driver: "mariadb", MySQL: DBAuthConfig{Host: "mysql", Port: 3306}}.ConnectionConfig()
	require.Equal(t, "mysql", my.Driver)
	require.Equal(t, "mysql", my.Host)

	unknown := DatabaseConfig{Driver: "oracle"}.ConnectionConfig()
	require.Equal(t, "oracle", unknown.Driver)
}

func TestRedisClientConfig(t *testing.T) {
	cfg := CacheConfig{Redis: RedisCacheConfig{Address: " 127.0.0.1:6379 ", Username: " u ", Password: "p", DB: 3, Timeout: time.Second}}
	redisCfg := cfg.RedisClientConfig()
	require.Equal(t, "127.0.0.1:6379", redisCfg.Address)
	require.Equal(t, "u", redisCfg.Username)
	require.Equal(t, 3, redisCfg.DB)
	require.Equal(t, time.Second, redisCfg.Timeout)
}
