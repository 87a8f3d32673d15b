package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/charlesng35/teamcal/pkg/crypto"
	apperrors "github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/metrics"
)

// SessionCookieName names the cookie carrying the admin session token.
const SessionCookieName = "admin_session"

// AdminConfig holds the site admin credentials. PasswordHash (bcrypt) takes precedence over
// the plain Password when both are set.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

// Session describes an authenticated site admin session.
type Session struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"-"`
}

// AdminSessionService authenticates the site admin and issues session tokens.
type AdminSessionService struct {
	tokens *JWTService
	cfg    AdminConfig
}

// NewAdminSessionService constructs an AdminSessionService.
func NewAdminSessionService(tokens *JWTService, cfg AdminConfig) (*AdminSessionService, error) {
	if tokens == nil {
		return nil, errors.New("admin session: jwt service is required")
	}
	cfg.Username = strings.TrimSpace(cfg.Username)
	return &AdminSessionService{tokens: tokens, cfg: cfg}, nil
}

// Enabled reports whether site admin credentials are configured.
func (s *AdminSessionService) Enabled() bool {
	return s != nil && s.cfg.Username != "" && (s.cfg.PasswordHash != "" || s.cfg.Password != "")
}

// Login checks the credentials and issues a new session.
func (s *AdminSessionService) Login(username, password string) (*Session, error) {
	if !s.Enabled() || !s.credentialsMatch(strings.TrimSpace(username), password) {
		metrics.AdminLogins.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(s.cfg.Username, uuid.NewString())
	if err != nil {
		metrics.AdminLogins.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	metrics.AdminLogins.WithLabelValues("success").Inc()
	return &Session{Username: s.cfg.Username, ExpiresAt: expiresAt, Token: token}, nil
}

// Authenticate validates a session token. Tokens issued for another username are rejected
// so renaming the admin logs out existing sessions.
func (s *AdminSessionService) Authenticate(token string) (*Session, error) {
	if !s.Enabled() {
		return nil, apperrors.ErrUnauthorized
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperrors.ErrUnauthorized.WithInternal(err)
	}
	if !crypto.EqualSecret(s.cfg.Username, claims.Username) {
		return nil, apperrors.ErrUnauthorized
	}

	session := &Session{Username: claims.Username, Token: token}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// TTL reports the lifetime of issued sessions.
func (s *AdminSessionService) TTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AdminSessionService) credentialsMatch(username, password string) bool {
	userOK := crypto.EqualSecret(s.cfg.Username, username)

	var passOK bool
	if s.cfg.PasswordHash != "" {
		passOK = crypto.VerifyPassword(s.cfg.PasswordHash, password)
	} else {
		passOK = crypto.EqualSecret(s.cfg.Password, password)
	}
	return userOK && passOK
}
