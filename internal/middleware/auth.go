package middleware

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/teamcal/internal/auth"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/response"
)

// CtxAdminSessionKey stores the authenticated *auth.Session in the gin context.
const CtxAdminSessionKey = "adminSession"

// AdminSession requires a valid site admin session cookie.
func AdminSession(sessions *iauth.AdminSessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(iauth.SessionCookieName)
		if err != nil || token == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		session, err := sessions.Authenticate(token)
		if err != nil {
			// Normalise all validation failures to 401
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxAdminSessionKey, session)
		c.Next()
	}
}
