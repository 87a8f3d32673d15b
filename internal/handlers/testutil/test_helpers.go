package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/api"
	"github.com/charlesng35/teamcal/internal/app"
	iauth "github.com/charlesng35/teamcal/internal/auth"
	"github.com/charlesng35/teamcal/internal/cache"
	sharedtestutil "github.com/charlesng35/teamcal/internal/database/testutil"
	"github.com/charlesng35/teamcal/internal/middleware"
	"github.com/charlesng35/teamcal/internal/monitoring"
	"github.com/charlesng35/teamcal/internal/monitoring/checks"
	"github.com/charlesng35/teamcal/internal/realtime"
	"github.com/charlesng35/teamcal/internal/security"
	"github.com/charlesng35/teamcal/internal/services"
	"github.com/charlesng35/teamcal/pkg/response"
)

const (
	// AdminUsername and AdminPassword are the site admin credentials of every Env.
	AdminUsername = "admin"
	AdminPassword = "s3cret-pass"
)

// Now is the fixed wall clock of every Env: Wednesday 2024-02-14 10:00 UTC.
var Now = time.Date(2024, time.February, 14, 10, 0, 0, 0, time.UTC)

// IndexHTML is the UI entry page served by the Env's static file system.
const IndexHTML = "<!doctype html><title>teamcal</title>"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	Hub    *realtime.Hub
	Config *app.Config

	cookies   map[string]*http.Cookie
	csrfToken string
}

// Option adjusts the configuration before the router is built.
type Option func(*app.Config)

// WithRateLimit enables rate limiting of mutating requests.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(cfg *app.Config) {
		cfg.Server.RateLimit = app.RateLimitConfig{Enabled: true, Requests: requests, Window: window}
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	cfg := &app.Config{
		Server: app.ServerConfig{
			Timezone: "UTC",
			BaseURL:  "https://teamcal.test",
			CSRF:     app.CSRFConfig{Enabled: true},
		},
		Admin: app.AdminConfig{
			Username:      AdminUsername,
			Password:      AdminPassword,
			SessionSecret: "test-suite-super-secret-key-32-bytes!!",
			SessionTTL:    24 * time.Hour,
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := cache.NewDatabaseStore(db)
	hub := realtime.NewHub()
	signal := services.NewTeamSignal(store, hub)

	teams, err := services.NewTeamService(db, signal)
	require.NoError(t, err)
	members, err := services.NewMemberService(db, signal)
	require.NoError(t, err)
	schedules, err := services.NewScheduleService(db, signal)
	require.NoError(t, err)
	events, err := services.NewEventService(db, signal)
	require.NoError(t, err)
	calendar, err := services.NewCalendarService(schedules, events, store, time.Minute)
	require.NoError(t, err)

	tokens, err := iauth.NewJWTService(cfg.Admin.JWTServiceConfig())
	require.NoError(t, err)
	sessions, err := iauth.NewAdminSessionService(tokens, cfg.Admin.Credentials())
	require.NoError(t, err)

	mon := monitoring.NewModule(monitoring.Options{Version: "test"})
	mon.Health().RegisterReadiness(checks.Database(db, time.Second))

	router, err := api.NewRouter(api.Dependencies{
		Config: cfg,
		Services: api.Services{
			Teams:     teams,
			Members:   members,
			Schedules: schedules,
			Events:    events,
			Calendar:  calendar,
		},
		Sessions:   sessions,
		Hub:        hub,
		Monitoring: mon,
		RateStore:  middleware.NewStoreRateStore(store),
		Audit:      security.NewAuditService(db, cfg),
		Static:     fstest.MapFS{"index.html": {Data: []byte(IndexHTML)}},
		Clock:      func() time.Time { return Now },
	})
	require.NoError(t, err)

	return &Env{
		T:       t,
		DB:      db,
		Router:  router,
		Hub:     hub,
		Config:  cfg,
		cookies: make(map[string]*http.Cookie),
	}
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router like a browser would: cookies
// set by earlier responses are replayed and the CSRF token is echoed on mutating calls.
func (e *Env) Request(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()
	return e.request(method, path, body, true, nil)
}

// RequestWithHeaders is Request with extra request headers.
func (e *Env) RequestWithHeaders(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()
	return e.request(method, path, body, true, headers)
}

// RequestWithoutCSRF skips the CSRF header, for testing the protection itself.
func (e *Env) RequestWithoutCSRF(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()
	return e.request(method, path, body, false, nil)
}

// MustData performs a request, asserts the status code and decodes the data payload.
func MustData[T any](e *Env, method, path string, body any, status int) T {
	e.T.Helper()

	w := e.Request(method, path, body)
	require.Equal(e.T, status, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var out T
	DecodeInto(e.T, resp.Data, &out)
	return out
}

// ErrorCode performs a request, asserts the status code and returns the error code.
func (e *Env) ErrorCode(method, path string, body any, status int) string {
	e.T.Helper()

	w := e.Request(method, path, body)
	require.Equal(e.T, status, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.False(e.T, resp.Success)
	require.NotNil(e.T, resp.Error)
	return resp.Error.Code
}

// LoginAdmin signs in as the site admin; the session cookie is kept for later requests.
func (e *Env) LoginAdmin() {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/admin/login", map[string]string{
		"username": AdminUsername,
		"password": AdminPassword,
	})
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(e.T, e.Cookie(iauth.SessionCookieName))
}

// Cookie returns the stored cookie with name, or nil.
func (e *Env) Cookie(name string) *http.Cookie {
	return e.cookies[name]
}

func (e *Env) request(method, path string, body any, withCSRF bool, headers map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.T, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(e.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if withCSRF && requiresCSRFAttestation(method) {
		e.ensureCSRFToken()
		req.Header.Set(middleware.CSRFHeaderName, e.csrfToken)
	}
	for _, cookie := range e.cookies {
		req.AddCookie(cookie)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	e.capture(w.Result())
	return w
}

func (e *Env) ensureCSRFToken() {
	if e.csrfToken != "" {
		return
	}
	// Any API GET issues the token, even one that ends in 404.
	e.request(http.MethodGet, "/api/teams/CSRF0000", nil, false, nil)
	require.NotEmpty(e.T, e.csrfToken)
}

func (e *Env) capture(resp *http.Response) {
	if resp == nil {
		return
	}
	defer resp.Body.Close()

	if token := resp.Header.Get(middleware.CSRFHeaderName); token != "" {
		e.csrfToken = token
	}
	for _, cookie := range resp.Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(e.cookies, cookie.Name)
			continue
		}
		clone := *cookie
		e.cookies[cookie.Name] = &clone
	}
}

func requiresCSRFAttestation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
