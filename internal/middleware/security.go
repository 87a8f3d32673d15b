package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultContentSecurityPolicy keeps the UI same-origin. QR codes render from data URLs
// and team streams connect back over websockets.
const DefaultContentSecurityPolicy = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:; frame-ancestors 'none'"

// SecurityHeaders hardens every response. Strict-Transport-Security is only sent over
// HTTPS and API responses are never cached, since calendars change under the client.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", DefaultContentSecurityPolicy)
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		if isSecureRequest(c.Request) {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}
