package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/charlesng35/teamcal/internal/auth"
)

func newAdminRouter(t *testing.T) (*gin.Engine, *iauth.AdminSessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "middleware-secret"})
	require.NoError(t, err)
	sessions, err := iauth.NewAdminSessionService(tokens, iauth.AdminConfig{Username: "admin", Password: "pw"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(AdminSession(sessions))
	r.GET("/admin", func(c *gin.Context) {
		value, ok := c.Get(CtxAdminSessionKey)
		require.True(t, ok)
		c.String(http.StatusOK, value.(*iauth.Session).Username)
	})
	return r, sessions
}

func TestAdminSessionMiddlewareRejectsMissingCookie(t *testing.T) {
	r, _ := newAdminRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminSessionMiddlewareRejectsInvalidToken(t *testing.T) {
	r, _ := newAdminRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: iauth.SessionCookieName, Value: "forged"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminSessionMiddlewareAcceptsValidSession(t *testing.T) {
	r, sessions := newAdminRouter(t)

	session, err := sessions.Login("admin", "pw")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: iauth.SessionCookieName, Value: session.Token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "admin", w.Body.String())
}
