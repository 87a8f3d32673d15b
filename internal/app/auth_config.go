package app

import (
	"strings"

	"github.com/charlesng35/teamcal/internal/auth"
)

// JWTServiceConfig converts AdminConfig into the parameters expected by the JWT service.
func (c AdminConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.SessionTTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}

	return auth.JWTConfig{
		Secret: c.SessionSecret,
		Issuer: auth.DefaultIssuer,
		TTL:    ttl,
	}
}

// Credentials converts AdminConfig into the admin session service credentials.
func (c AdminConfig) Credentials() auth.AdminConfig {
	return auth.AdminConfig{
		Username:     strings.TrimSpace(c.Username),
		Password:     c.Password,
		PasswordHash: strings.TrimSpace(c.PasswordHash),
	}
}
