package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/app"
	"github.com/charlesng35/teamcal/internal/models"
)

// CheckStatus captures the outcome of a security audit check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

const maxRecommendedSessionTTL = 7 * 24 * time.Hour

// Check contains the result of a single audit verification.
type Check struct {
	ID          string      `json:"id"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation,omitempty"`
	Details     any         `json:"details,omitempty"`
}

// Result aggregates all checks with a simple status summary.
type Result struct {
	CheckedAt time.Time      `json:"checked_at"`
	Checks    []Check        `json:"checks"`
	Summary   map[string]int `json:"summary"`
}

// Failing returns the checks that did not pass.
func (r Result) Failing() []Check {
	out := make([]Check, 0, len(r.Checks))
	for _, check := range r.Checks {
		if check.Status != StatusPass {
			out = append(out, check)
		}
	}
	return out
}

// AuditService evaluates the deployment's security posture: admin console credentials,
// session signing, CSRF protection and teams that cannot be administered.
type AuditService struct {
	db  *gorm.DB
	cfg *app.Config
	now func() time.Time
}

// NewAuditService constructs the audit service. Both dependencies are optional; missing
// inputs degrade specific checks to warnings.
func NewAuditService(db *gorm.DB, cfg *app.Config) *AuditService {
	return &AuditService{
		db:  db,
		cfg: cfg,
		now: time.Now,
	}
}

// WithClock overrides the clock used in results (primarily for testing).
func (s *AuditService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Run executes all audit checks and returns their outcome.
func (s *AuditService) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := []Check{
		s.checkAdminCredentials(),
		s.checkSessionSecret(),
		s.checkSessionTTL(),
		s.checkCSRF(),
		s.checkTeamAdminCodes(ctx),
	}

	summary := map[string]int{
		string(StatusPass): 0,
		string(StatusWarn): 0,
		string(StatusFail): 0,
	}

	for _, check := range checks {
		summary[string(check.Status)]++
	}

	return Result{
		CheckedAt: s.now().UTC(),
		Checks:    checks,
		Summary:   summary,
	}
}

func configMissing(id, subject string) Check {
	return Check{
		ID:          id,
		Status:      StatusWarn,
		Message:     fmt.Sprintf("Configuration not loaded; unable to verify %s.", subject),
		Remediation: "Load configuration before running the security audit.",
	}
}

func (s *AuditService) checkAdminCredentials() Check {
	const id = "admin_credentials"
	if s.cfg == nil {
		return configMissing(id, "admin credentials")
	}

	admin := s.cfg.Admin
	switch {
	case strings.TrimSpace(admin.Username) == "" || (admin.Password == "" && strings.TrimSpace(admin.PasswordHash) == ""):
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Site admin console is disabled.",
			Remediation: "Set TEAMCAL_ADMIN_USERNAME and TEAMCAL_ADMIN_PASSWORD_HASH to manage teams centrally.",
		}
	case strings.TrimSpace(admin.PasswordHash) == "" && len(admin.Password) < 12:
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     fmt.Sprintf("Site admin password is too short (%d characters).", len(admin.Password)),
			Remediation: "Use a password of at least 12 characters, preferably configured as a bcrypt hash.",
		}
	case strings.TrimSpace(admin.PasswordHash) == "":
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Site admin password is configured in plain text.",
			Remediation: "Replace admin.password with a bcrypt admin.password_hash.",
		}
	default:
		return Check{
			ID:      id,
			Status:  StatusPass,
			Message: "Site admin password is stored as a bcrypt hash.",
		}
	}
}

func (s *AuditService) checkSessionSecret() Check {
	const id = "session_secret_strength"
	if s.cfg == nil {
		return configMissing(id, "the session signing secret")
	}

	length := len(strings.TrimSpace(s.cfg.Admin.SessionSecret))
	switch {
	case length == 0:
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     "Missing session signing secret.",
			Remediation: "Provide a cryptographically secure signing secret (>= 32 bytes).",
		}
	case length < 32:
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     fmt.Sprintf("Session signing secret is too short (%d bytes).", length),
			Remediation: "Use a randomly generated secret of at least 32 bytes.",
			Details:     map[string]any{"length": length},
		}
	case length < 48:
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Session signing secret is %d bytes. Consider increasing to 48+ bytes.", length),
			Remediation: "Increase the length of TEAMCAL_ADMIN_SESSION_SECRET to at least 48 bytes.",
			Details:     map[string]any{"length": length},
		}
	default:
		return Check{
			ID:      id,
			Status:  StatusPass,
			Message: fmt.Sprintf("Session signing secret length is %d bytes.", length),
			Details: map[string]any{"length": length},
		}
	}
}

func (s *AuditService) checkSessionTTL() Check {
	const id = "session_ttl"
	if s.cfg == nil {
		return configMissing(id, "the session lifetime")
	}

	ttl := s.cfg.Admin.SessionTTL
	if ttl <= 0 {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Admin session TTL is not configured; using default duration.",
			Remediation: "Set TEAMCAL_ADMIN_SESSION_TTL to control session lifetime.",
		}
	}

	if ttl > maxRecommendedSessionTTL {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Admin session TTL (%s) exceeds recommended maximum (%s).", ttl, maxRecommendedSessionTTL),
			Remediation: "Reduce the admin session TTL to 7 days or lower.",
			Details:     map[string]any{"ttl": ttl.String()},
		}
	}

	return Check{
		ID:      id,
		Status:  StatusPass,
		Message: fmt.Sprintf("Admin session TTL is %s.", ttl),
		Details: map[string]any{"ttl": ttl.String()},
	}
}

func (s *AuditService) checkCSRF() Check {
	const id = "csrf_protection"
	if s.cfg == nil {
		return configMissing(id, "CSRF protection")
	}

	if !s.cfg.Server.CSRF.Enabled {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "CSRF protection is disabled.",
			Remediation: "Set TEAMCAL_SERVER_CSRF_ENABLED=true when the UI is served to browsers.",
		}
	}
	return Check{
		ID:      id,
		Status:  StatusPass,
		Message: "CSRF protection is enabled.",
	}
}

// checkTeamAdminCodes flags teams with an empty admin code; nobody can edit or delete
// them without the site admin console.
func (s *AuditService) checkTeamAdminCodes(ctx context.Context) Check {
	const id = "team_admin_codes"
	if s.db == nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Database unavailable; unable to inspect team admin codes.",
			Remediation: "Ensure database connectivity before running the audit.",
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("admin_code = ?", "").
		Count(&count).Error; err != nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Could not inspect team admin codes: %v", err),
			Remediation: "Retry after resolving database errors.",
		}
	}

	if count > 0 {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("%d team(s) have no admin code and can only be managed by the site admin.", count),
			Remediation: "Recreate those teams with an admin code or manage them from the admin console.",
			Details:     map[string]any{"count": count},
		}
	}

	return Check{
		ID:      id,
		Status:  StatusPass,
		Message: "Every team has an admin code.",
	}
}
