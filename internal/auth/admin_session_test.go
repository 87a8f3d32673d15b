package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamcal/pkg/crypto"
	apperrors "github.com/charlesng35/teamcal/pkg/errors"
)

func newAdminSessions(t *testing.T, cfg AdminConfig) *AdminSessionService {
	t.Helper()
	tokens, err := NewJWTService(JWTConfig{Secret: "session-secret"})
	require.NoError(t, err)
	svc, err := NewAdminSessionService(tokens, cfg)
	require.NoError(t, err)
	return svc
}

func TestAdminSessionLoginWithPlainPassword(t *testing.T) {
	svc := newAdminSessions(t, AdminConfig{Username: "admin", Password: "hunter2"})
	require.True(t, svc.Enabled())

	session, err := svc.Login("admin", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "admin", session.Username)
	require.NotEmpty(t, session.Token)
	require.WithinDuration(t, time.Now().Add(DefaultSessionTTL), session.ExpiresAt, time.Minute)

	authed, err := svc.Authenticate(session.Token)
	require.NoError(t, err)
	require.Equal(t, "admin", authed.Username)
}

func TestAdminSessionLoginWithPasswordHash(t *testing.T) {
	hash, err := crypto.HashPassword("correct horse")
	require.NoError(t, err)

	svc := newAdminSessions(t, AdminConfig{Username: "admin", Password: "ignored", PasswordHash: hash})

	_, err = svc.Login("admin", "ignored")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login("admin", "correct horse")
	require.NoError(t, err)
}

func TestAdminSessionRejectsBadCredentials(t *testing.T) {
	svc := newAdminSessions(t, AdminConfig{Username: "admin", Password: "hunter2"})

	_, err := svc.Login("root", "hunter2")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login("admin", "hunter3")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAdminSessionDisabledWithoutCredentials(t *testing.T) {
	svc := newAdminSessions(t, AdminConfig{})
	require.False(t, svc.Enabled())

	_, err := svc.Login("", "")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate("anything")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAdminSessionAuthenticateRejectsTamperedAndForeignTokens(t *testing.T) {
	svc := newAdminSessions(t, AdminConfig{Username: "admin", Password: "hunter2"})

	session, err := svc.Login("admin", "hunter2")
	require.NoError(t, err)

	_, err = svc.Authenticate(session.Token + "x")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	renamed := newAdminSessions(t, AdminConfig{Username: "operator", Password: "hunter2"})
	_, err = renamed.Authenticate(session.Token)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestNewAdminSessionServiceRequiresTokens(t *testing.T) {
	_, err := NewAdminSessionService(nil, AdminConfig{})
	require.Error(t, err)
}
