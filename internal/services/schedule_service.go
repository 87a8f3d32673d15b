package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/calendar"
	"github.com/charlesng35/teamcal/internal/models"
	"github.com/charlesng35/teamcal/pkg/metrics"
)

const maxTaskLength = 500

// CreateScheduleInput describes a single attendance slot. TeamID scopes the member lookup.
type CreateScheduleInput struct {
	TeamID    string
	MemberID  string
	Date      models.Date
	StartTime string
	EndTime   string
	Task      *string
}

// CreateScheduleRangeInput repeats the same slot on every day of [StartDate, EndDate].
type CreateScheduleRangeInput struct {
	TeamID    string
	MemberID  string
	StartDate models.Date
	EndDate   models.Date
	StartTime string
	EndTime   string
	Task      *string
}

// UpdateScheduleInput changes the time window and note. The member and date are fixed;
// nil leaves a field unchanged and an empty task clears it.
type UpdateScheduleInput struct {
	StartTime *string
	EndTime   *string
	Task      *string
}

// ScheduleService manages member attendance slots.
type ScheduleService struct {
	db          *gorm.DB
	invalidator Invalidator
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(db *gorm.DB, invalidator Invalidator) (*ScheduleService, error) {
	if db == nil {
		return nil, errors.New("schedule service: db is required")
	}
	return &ScheduleService{db: db, invalidator: invalidatorOrNop(invalidator)}, nil
}

// Create stores one schedule.
func (s *ScheduleService) Create(ctx context.Context, input CreateScheduleInput) (*models.Schedule, error) {
	ctx = ensureContext(ctx)

	if input.Date.IsZero() {
		return nil, ErrInvalidDate
	}
	schedules, err := s.CreateRange(ctx, CreateScheduleRangeInput{
		TeamID:    input.TeamID,
		MemberID:  input.MemberID,
		StartDate: input.Date,
		EndDate:   input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Task:      input.Task,
	})
	if err != nil {
		return nil, err
	}
	return &schedules[0], nil
}

// CreateRange stores one schedule per day of the range in a single transaction: either
// every day is written or none is.
func (s *ScheduleService) CreateRange(ctx context.Context, input CreateScheduleRangeInput) ([]models.Schedule, error) {
	ctx = ensureContext(ctx)

	member, team, err := s.memberInTeam(ctx, input.TeamID, input.MemberID)
	if err != nil {
		return nil, err
	}

	start, end := strings.TrimSpace(input.StartTime), strings.TrimSpace(input.EndTime)
	if start == "" || end == "" {
		return nil, ErrInvalidTime
	}
	if err := validateTimeWindow(start, end); err != nil {
		return nil, err
	}
	task, err := optionalText("task", input.Task, maxTaskLength)
	if err != nil {
		return nil, err
	}

	template := models.Schedule{
		MemberID:  member.ID,
		StartTime: start,
		EndTime:   end,
		Task:      task,
	}
	schedules, err := calendar.Expand(input.StartDate, input.EndDate, template, func(s models.Schedule, day models.Date) models.Schedule {
		s.Date = day
		return s
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&schedules, 100).Error
	}); err != nil {
		return nil, fmt.Errorf("schedule service: create schedules: %w", err)
	}
	metrics.RangeExpansionDays.WithLabelValues("schedule").Observe(float64(len(schedules)))

	for i := range schedules {
		schedules[i].Member = member
	}

	s.invalidator.InvalidateTeam(ctx, team)
	return schedules, nil
}

// Get loads a schedule with its member.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	ctx = ensureContext(ctx)

	var schedule models.Schedule
	err := s.db.WithContext(ctx).Preload("Member").First(&schedule, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("schedule service: load schedule: %w", err)
	}
	return &schedule, nil
}

// Update edits a schedule in place. Range expansion never applies to edits.
func (s *ScheduleService) Update(ctx context.Context, id string, input UpdateScheduleInput) (*models.Schedule, error) {
	ctx = ensureContext(ctx)

	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end := schedule.StartTime, schedule.EndTime
	if input.StartTime != nil {
		start = strings.TrimSpace(*input.StartTime)
	}
	if input.EndTime != nil {
		end = strings.TrimSpace(*input.EndTime)
	}
	if start == "" || end == "" {
		return nil, ErrInvalidTime
	}
	if err := validateTimeWindow(start, end); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"start_time": start,
		"end_time":   end,
	}
	if input.Task != nil {
		task, err := optionalText("task", input.Task, maxTaskLength)
		if err != nil {
			return nil, err
		}
		updates["task"] = task
	}

	if err := s.db.WithContext(ctx).Model(&models.Schedule{}).Where("id = ?", schedule.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("schedule service: update schedule: %w", err)
	}

	updated, err := s.Get(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}
	s.invalidateTeamOf(ctx, updated.Member)
	return updated, nil
}

// Delete removes a schedule. Deleting an unknown id reports ErrScheduleNotFound.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	schedule, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&models.Schedule{}, "id = ?", schedule.ID)
	if result.Error != nil {
		return fmt.Errorf("schedule service: delete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrScheduleNotFound
	}

	s.invalidateTeamOf(ctx, schedule.Member)
	return nil
}

// ListBetween returns the team's schedules dated inside [from, to] ordered by date, start
// time, end time and creation.
func (s *ScheduleService) ListBetween(ctx context.Context, teamID string, from, to models.Date) ([]models.Schedule, error) {
	ctx = ensureContext(ctx)

	schedules := make([]models.Schedule, 0)
	err := s.db.WithContext(ctx).
		Joins("JOIN members ON members.id = schedules.member_id").
		Where("members.team_id = ?", strings.TrimSpace(teamID)).
		Where("schedules.date >= ? AND schedules.date <= ?", from, to).
		Preload("Member").
		Order("schedules.date ASC").
		Order("schedules.start_time ASC").
		Order("schedules.end_time ASC").
		Order("schedules.created_at ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("schedule service: list schedules: %w", err)
	}
	return schedules, nil
}

// ListByDay returns the team's schedules of one day.
func (s *ScheduleService) ListByDay(ctx context.Context, teamID string, day models.Date) ([]models.Schedule, error) {
	return s.listWindow(ctx, teamID, calendar.ViewDay, day)
}

// ListByWeek returns the schedules of the Monday-to-Sunday week containing anchor.
func (s *ScheduleService) ListByWeek(ctx context.Context, teamID string, anchor models.Date) ([]models.Schedule, error) {
	return s.listWindow(ctx, teamID, calendar.ViewWeek, anchor)
}

// ListByMonth returns the schedules of the calendar month containing anchor.
func (s *ScheduleService) ListByMonth(ctx context.Context, teamID string, anchor models.Date) ([]models.Schedule, error) {
	return s.listWindow(ctx, teamID, calendar.ViewMonth, anchor)
}

func (s *ScheduleService) listWindow(ctx context.Context, teamID string, view calendar.View, anchor models.Date) ([]models.Schedule, error) {
	window, err := calendar.Window(view, anchor)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return s.ListBetween(ctx, teamID, window.From, window.To)
}

func (s *ScheduleService) memberInTeam(ctx context.Context, teamID, memberID string) (*models.Member, *models.Team, error) {
	team, err := loadTeam(ctx, s.db, teamID)
	if err != nil {
		return nil, nil, err
	}
	member, err := loadMember(ctx, s.db, memberID)
	if err != nil {
		return nil, nil, err
	}
	if member.TeamID != team.ID {
		return nil, nil, ErrMemberNotFound
	}
	return member, team, nil
}

func (s *ScheduleService) invalidateTeamOf(ctx context.Context, member *models.Member) {
	if member == nil {
		return
	}
	team, err := loadTeam(ctx, s.db, member.TeamID)
	if err != nil {
		return
	}
	s.invalidator.InvalidateTeam(ctx, team)
}
