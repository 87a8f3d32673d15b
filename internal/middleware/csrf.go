package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/teamcal/pkg/crypto"
	"github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/logger"
	"github.com/charlesng35/teamcal/pkg/response"
)

const (
	// CSRFCookieName carries the double-submit token to the browser UI.
	CSRFCookieName = "teamcal_csrf"
	// CSRFHeaderName is echoed by the UI on every mutating API call.
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenLength  = 48
	csrfCookieMaxAge = 12 * 60 * 60
)

// PublicFeedRoutes are read-only endpoints consumed outside the browser UI
// (calendar subscriptions, websocket clients). They never receive a token.
var PublicFeedRoutes = []string{
	"/api/teams/:code/calendar.ics",
	"/api/teams/:code/stream",
}

type csrfPolicy struct {
	exempt map[string]struct{}
	maxAge int
}

// CSRFOption customises CSRF.
type CSRFOption func(*csrfPolicy)

// WithCSRFExempt skips token handling for the given route templates.
func WithCSRFExempt(routes ...string) CSRFOption {
	return func(p *csrfPolicy) {
		for _, route := range routes {
			p.exempt[route] = struct{}{}
		}
	}
}

// WithCSRFMaxAge sets the token cookie lifetime in seconds.
func WithCSRFMaxAge(seconds int) CSRFOption {
	return func(p *csrfPolicy) {
		if seconds > 0 {
			p.maxAge = seconds
		}
	}
}

// CSRF protects the cookie-authenticated API with the double-submit-cookie pattern.
// Reads hand out the token in a cookie and the X-CSRF-Token header; team, member,
// schedule, event and admin mutations must echo it back.
func CSRF(opts ...CSRFOption) gin.HandlerFunc {
	policy := &csrfPolicy{exempt: map[string]struct{}{}, maxAge: csrfCookieMaxAge}
	for _, opt := range opts {
		opt(policy)
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || policy.skips(c) {
			c.Next()
			return
		}

		token, err := policy.ensureToken(c)
		if err != nil {
			response.Error(c, errors.ErrInternalServer)
			c.Abort()
			return
		}

		if !mutates(c.Request.Method) {
			c.Header(CSRFHeaderName, token)
			c.Next()
			return
		}

		echoed := strings.TrimSpace(c.GetHeader(CSRFHeaderName))
		if !tokensMatch(token, echoed) {
			logger.WithModule("csrf").Warn("rejected mutation without matching token",
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.Bool("header_present", echoed != ""),
			)
			response.Error(c, errors.ErrCSRFInvalid)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RotateCSRFToken issues a fresh token, used when the admin session changes.
func RotateCSRFToken(c *gin.Context) error {
	token, err := crypto.GenerateToken(csrfTokenLength)
	if err != nil {
		return err
	}
	writeCSRFCookie(c, token, csrfCookieMaxAge)
	c.Header(CSRFHeaderName, token)
	return nil
}

func (p *csrfPolicy) skips(c *gin.Context) bool {
	route := c.FullPath()
	if route == "" {
		return false
	}
	_, ok := p.exempt[route]
	return ok
}

func (p *csrfPolicy) ensureToken(c *gin.Context) (string, error) {
	if existing, err := c.Cookie(CSRFCookieName); err == nil && existing != "" {
		writeCSRFCookie(c, existing, p.maxAge)
		return existing, nil
	}
	token, err := crypto.GenerateToken(csrfTokenLength)
	if err != nil {
		return "", err
	}
	writeCSRFCookie(c, token, p.maxAge)
	return token, nil
}

func writeCSRFCookie(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   isSecureRequest(c.Request),
		HttpOnly: false,
		MaxAge:   maxAge,
		SameSite: http.SameSiteStrictMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func mutates(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func tokensMatch(expected, echoed string) bool {
	if expected == "" || len(expected) != len(echoed) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(echoed)) == 1
}
