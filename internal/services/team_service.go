package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/models"
	"github.com/charlesng35/teamcal/pkg/metrics"
	"github.com/charlesng35/teamcal/pkg/teamcode"
)

const maxTeamNameLength = 100

// CreateTeamInput captures new team metadata.
type CreateTeamInput struct {
	Name      string
	Code      string
	AdminCode string
}

// UpdateTeamInput describes mutable team fields.
type UpdateTeamInput struct {
	Name string
}

// TeamService handles team lifecycle, admin code checks and the site admin operations.
type TeamService struct {
	db          *gorm.DB
	invalidator Invalidator
}

// NewTeamService constructs a TeamService instance.
func NewTeamService(db *gorm.DB, invalidator Invalidator) (*TeamService, error) {
	if db == nil {
		return nil, errors.New("team service: db is required")
	}
	return &TeamService{
		db:          db,
		invalidator: invalidatorOrNop(invalidator),
	}, nil
}

// Create registers a new team. The join code is normalised before validation; the admin
// code must already consist of 4-10 letters or digits.
func (s *TeamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if !teamcode.ValidateStrict(input.AdminCode) {
		return nil, ErrInvalidAdminInput
	}
	return s.create(ensureContext(ctx), input)
}

// AdminCreate registers a team on behalf of the site admin. The admin code is optional;
// a team without one can only be managed from the site admin console.
func (s *TeamService) AdminCreate(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if input.AdminCode != "" && !teamcode.ValidateStrict(input.AdminCode) {
		return nil, ErrInvalidAdminInput
	}
	return s.create(ensureContext(ctx), input)
}

func (s *TeamService) create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name, err := requireText("team name", input.Name, maxTeamNameLength)
	if err != nil {
		return nil, err
	}

	code, ok := teamcode.NormalizeAndValidate(input.Code)
	if !ok {
		return nil, ErrInvalidTeamCode
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Team{}).Where("code = ?", code).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("team service: check code: %w", err)
	}
	if existing > 0 {
		return nil, ErrTeamCodeTaken
	}

	team := &models.Team{
		Code:      code,
		Name:      name,
		AdminCode: input.AdminCode,
	}
	if err := s.db.WithContext(ctx).Create(team).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrTeamCodeTaken
		}
		return nil, fmt.Errorf("team service: create team: %w", err)
	}

	s.invalidator.InvalidateTeam(ctx, team)
	return team, nil
}

// GetByCode resolves a join code (normalised, so case and punctuation do not matter) and
// loads the team with its members by nickname and events by date.
func (s *TeamService) GetByCode(ctx context.Context, code string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	team, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("nickname ASC")
		}).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC").Order("start_time ASC")
		}).
		First(team, "id = ?", team.ID).Error
	if err != nil {
		return nil, fmt.Errorf("team service: load team relations: %w", err)
	}
	return team, nil
}

// FindByCode resolves a join code without loading relations.
func (s *TeamService) FindByCode(ctx context.Context, code string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	normalized, ok := teamcode.NormalizeAndValidate(code)
	if !ok {
		return nil, ErrTeamNotFound
	}

	var team models.Team
	err := s.db.WithContext(ctx).First(&team, "code = ?", normalized).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team service: find team: %w", err)
	}
	return &team, nil
}

// GetByID loads a team by primary key.
func (s *TeamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	return loadTeam(ensureContext(ctx), s.db, id)
}

// Update renames a team after checking the admin code.
func (s *TeamService) Update(ctx context.Context, id string, input UpdateTeamInput, adminCode string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	team, err := s.authorize(ctx, func() (*models.Team, error) { return loadTeam(ctx, s.db, id) }, adminCode)
	if err != nil {
		return nil, err
	}
	return s.rename(ctx, team, input.Name)
}

// UpdateByCode is Update addressed by join code.
func (s *TeamService) UpdateByCode(ctx context.Context, code string, input UpdateTeamInput, adminCode string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	team, err := s.authorize(ctx, func() (*models.Team, error) { return s.FindByCode(ctx, code) }, adminCode)
	if err != nil {
		return nil, err
	}
	return s.rename(ctx, team, input.Name)
}

// Delete removes a team and everything it owns after checking the admin code.
func (s *TeamService) Delete(ctx context.Context, id, adminCode string) error {
	ctx = ensureContext(ctx)

	team, err := s.authorize(ctx, func() (*models.Team, error) { return loadTeam(ctx, s.db, id) }, adminCode)
	if err != nil {
		return err
	}
	return s.deleteCascade(ctx, team)
}

// DeleteByCode is Delete addressed by join code.
func (s *TeamService) DeleteByCode(ctx context.Context, code, adminCode string) error {
	ctx = ensureContext(ctx)

	team, err := s.authorize(ctx, func() (*models.Team, error) { return s.FindByCode(ctx, code) }, adminCode)
	if err != nil {
		return err
	}
	return s.deleteCascade(ctx, team)
}

// VerifyAdminCode reports whether adminCode matches the team's stored code. Unknown teams
// report false without an error.
func (s *TeamService) VerifyAdminCode(ctx context.Context, id, adminCode string) (bool, error) {
	ctx = ensureContext(ctx)

	_, err := s.authorize(ctx, func() (*models.Team, error) { return loadTeam(ctx, s.db, id) }, adminCode)
	return verifyResult(err)
}

// VerifyAdminCodeByCode is VerifyAdminCode addressed by join code.
func (s *TeamService) VerifyAdminCodeByCode(ctx context.Context, code, adminCode string) (bool, error) {
	ctx = ensureContext(ctx)

	_, err := s.authorize(ctx, func() (*models.Team, error) { return s.FindByCode(ctx, code) }, adminCode)
	return verifyResult(err)
}

// List returns every team with member and event counts, newest first. The search term
// matches names case-insensitively and codes after normalisation.
func (s *TeamService) List(ctx context.Context, search string) ([]models.TeamSummary, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Model(&models.Team{}).
		Select(`teams.id, teams.code, teams.name, teams.created_at,
			(SELECT COUNT(*) FROM members WHERE members.team_id = teams.id) AS member_count,
			(SELECT COUNT(*) FROM events WHERE events.team_id = teams.id) AS event_count`)

	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		code := teamcode.Normalize(term)
		if code == "" {
			query = query.Where("LOWER(teams.name) LIKE ?", "%"+term+"%")
		} else {
			query = query.Where("LOWER(teams.name) LIKE ? OR teams.code LIKE ?", "%"+term+"%", "%"+code+"%")
		}
	}

	summaries := make([]models.TeamSummary, 0)
	if err := query.Order("teams.created_at DESC").Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("team service: list teams: %w", err)
	}
	return summaries, nil
}

// AdminRename renames a team without an admin code check.
func (s *TeamService) AdminRename(ctx context.Context, id, name string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	team, err := loadTeam(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return s.rename(ctx, team, name)
}

// AdminDelete removes a team without an admin code check.
func (s *TeamService) AdminDelete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	team, err := loadTeam(ctx, s.db, id)
	if err != nil {
		return err
	}
	return s.deleteCascade(ctx, team)
}

// authorize loads the team and compares the admin code verbatim. A missing team and a
// wrong code produce the same error so team existence is not revealed.
func (s *TeamService) authorize(ctx context.Context, load func() (*models.Team, error), adminCode string) (*models.Team, error) {
	team, err := load()
	if errors.Is(err, ErrTeamNotFound) {
		metrics.AdminCodeChecks.WithLabelValues("deny").Inc()
		return nil, ErrInvalidAdminCode
	}
	if err != nil {
		return nil, err
	}

	if team.AdminCode == "" || team.AdminCode != adminCode {
		metrics.AdminCodeChecks.WithLabelValues("deny").Inc()
		return nil, ErrInvalidAdminCode
	}

	metrics.AdminCodeChecks.WithLabelValues("allow").Inc()
	return team, nil
}

func (s *TeamService) rename(ctx context.Context, team *models.Team, name string) (*models.Team, error) {
	name, err := requireText("team name", name, maxTeamNameLength)
	if err != nil {
		return nil, err
	}
	if name == team.Name {
		return team, nil
	}

	if err := s.db.WithContext(ctx).Model(team).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("team service: update team: %w", err)
	}
	team.Name = name

	s.invalidator.InvalidateTeam(ctx, team)
	return team, nil
}

// deleteCascade removes schedules, members, events and the team in one transaction so the
// cascade holds even where the driver does not enforce foreign keys.
func (s *TeamService) deleteCascade(ctx context.Context, team *models.Team) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memberIDs := tx.Model(&models.Member{}).Select("id").Where("team_id = ?", team.ID)
		if err := tx.Where("member_id IN (?)", memberIDs).Delete(&models.Schedule{}).Error; err != nil {
			return fmt.Errorf("delete schedules: %w", err)
		}
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.Member{}).Error; err != nil {
			return fmt.Errorf("delete members: %w", err)
		}
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.Event{}).Error; err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		result := tx.Delete(&models.Team{}, "id = ?", team.ID)
		if result.Error != nil {
			return fmt.Errorf("delete team: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTeamNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return err
		}
		return fmt.Errorf("team service: %w", err)
	}

	s.invalidator.InvalidateTeam(ctx, team)
	return nil
}

func verifyResult(err error) (bool, error) {
	if errors.Is(err, ErrInvalidAdminCode) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
