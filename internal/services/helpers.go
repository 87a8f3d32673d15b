package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/models"
	apperrors "github.com/charlesng35/teamcal/pkg/errors"
	"github.com/charlesng35/teamcal/pkg/validator"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate")
}

// requireText trims value and rejects empty or oversized input.
func requireText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewBadRequest(field + " is required")
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		return "", apperrors.NewBadRequest(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return value, nil
}

// optionalText trims value; blank input becomes nil.
func optionalText(field string, value *string, max int) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	if max > 0 && utf8.RuneCountInString(trimmed) > max {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return &trimmed, nil
}

// validateTimeWindow checks HH:MM formatting of the supplied times and, when both are
// present, that start sorts before end.
func validateTimeWindow(start, end string) error {
	if start != "" && !validator.IsClock(start) {
		return ErrInvalidTime
	}
	if end != "" && !validator.IsClock(end) {
		return ErrInvalidTime
	}
	if start != "" && end != "" && start >= end {
		return ErrInvalidTimeRange
	}
	return nil
}

func optionalClock(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// loadTeam fetches a team by primary key.
func loadTeam(ctx context.Context, db *gorm.DB, id string) (*models.Team, error) {
	var team models.Team
	err := db.WithContext(ctx).First(&team, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load team: %w", err)
	}
	return &team, nil
}

// loadMember fetches a member by primary key.
func loadMember(ctx context.Context, db *gorm.DB, id string) (*models.Member, error) {
	var member models.Member
	err := db.WithContext(ctx).First(&member, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}
	return &member, nil
}
