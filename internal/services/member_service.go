package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/models"
)

const maxNicknameLength = 50

// UpdateMemberInput describes mutable member fields; nil leaves a field unchanged.
type UpdateMemberInput struct {
	Nickname *string
	Color    *string
}

// MemberService manages the people of a team.
type MemberService struct {
	db          *gorm.DB
	invalidator Invalidator
}

// NewMemberService constructs a MemberService.
func NewMemberService(db *gorm.DB, invalidator Invalidator) (*MemberService, error) {
	if db == nil {
		return nil, errors.New("member service: db is required")
	}
	return &MemberService{db: db, invalidator: invalidatorOrNop(invalidator)}, nil
}

// Add creates a member in the team. An empty color selects the default palette entry.
func (s *MemberService) Add(ctx context.Context, teamID, nickname, color string) (*models.Member, error) {
	ctx = ensureContext(ctx)

	team, err := loadTeam(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}

	nickname, err = requireText("nickname", nickname, maxNicknameLength)
	if err != nil {
		return nil, err
	}
	color, err = resolveColor(color)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		TeamID:   team.ID,
		Nickname: nickname,
		Color:    color,
	}
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, fmt.Errorf("member service: create member: %w", err)
	}

	s.invalidator.InvalidateTeam(ctx, team)
	return member, nil
}

// Get loads a member by id.
func (s *MemberService) Get(ctx context.Context, id string) (*models.Member, error) {
	return loadMember(ensureContext(ctx), s.db, id)
}

// Update changes nickname and/or colour.
func (s *MemberService) Update(ctx context.Context, id string, input UpdateMemberInput) (*models.Member, error) {
	ctx = ensureContext(ctx)

	member, err := loadMember(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Nickname != nil {
		nickname, err := requireText("nickname", *input.Nickname, maxNicknameLength)
		if err != nil {
			return nil, err
		}
		updates["nickname"] = nickname
	}
	if input.Color != nil {
		color, err := resolveColor(*input.Color)
		if err != nil {
			return nil, err
		}
		updates["color"] = color
	}
	if len(updates) == 0 {
		return member, nil
	}

	if err := s.db.WithContext(ctx).Model(member).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("member service: update member: %w", err)
	}
	if err := s.db.WithContext(ctx).First(member, "id = ?", member.ID).Error; err != nil {
		return nil, fmt.Errorf("member service: reload member: %w", err)
	}

	s.invalidateTeamOf(ctx, member.TeamID)
	return member, nil
}

// Delete removes a member together with the member's schedules.
func (s *MemberService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	member, err := loadMember(ctx, s.db, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", member.ID).Delete(&models.Schedule{}).Error; err != nil {
			return fmt.Errorf("delete schedules: %w", err)
		}
		result := tx.Delete(&models.Member{}, "id = ?", member.ID)
		if result.Error != nil {
			return fmt.Errorf("delete member: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrMemberNotFound
		}
		return nil
	})
	if errors.Is(err, ErrMemberNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("member service: %w", err)
	}

	s.invalidateTeamOf(ctx, member.TeamID)
	return nil
}

// ListByTeam returns the team's members ordered by nickname.
func (s *MemberService) ListByTeam(ctx context.Context, teamID string) ([]models.Member, error) {
	ctx = ensureContext(ctx)

	members := make([]models.Member, 0)
	if err := s.db.WithContext(ctx).
		Where("team_id = ?", strings.TrimSpace(teamID)).
		Order("nickname ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("member service: list members: %w", err)
	}
	return members, nil
}

func (s *MemberService) invalidateTeamOf(ctx context.Context, teamID string) {
	team, err := loadTeam(ctx, s.db, teamID)
	if err != nil {
		return
	}
	s.invalidator.InvalidateTeam(ctx, team)
}

func resolveColor(color string) (string, error) {
	color = strings.ToLower(strings.TrimSpace(color))
	if color == "" {
		return models.DefaultMemberColor, nil
	}
	if !models.IsMemberColor(color) {
		return "", ErrInvalidColor
	}
	return color, nil
}
