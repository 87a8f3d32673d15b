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

const (
	maxEventTitleLength       = 200
	maxEventDescriptionLength = 2000
)

// CreateEventInput describes a single event. Leaving both times empty makes it all-day.
type CreateEventInput struct {
	TeamID      string
	Title       string
	Date        models.Date
	StartTime   *string
	EndTime     *string
	Description *string
}

// CreateEventRangeInput repeats the same event on every day of [StartDate, EndDate].
type CreateEventRangeInput struct {
	TeamID      string
	Title       string
	StartDate   models.Date
	EndDate     models.Date
	StartTime   *string
	EndTime     *string
	Description *string
}

// UpdateEventInput describes an event edit. A nil field is kept; an empty string clears an
// optional field.
type UpdateEventInput struct {
	Title       *string
	Date        *models.Date
	StartTime   *string
	EndTime     *string
	Description *string
}

// EventService manages team calendar events.
type EventService struct {
	db          *gorm.DB
	invalidator Invalidator
}

// NewEventService constructs an EventService.
func NewEventService(db *gorm.DB, invalidator Invalidator) (*EventService, error) {
	if db == nil {
		return nil, errors.New("event service: db is required")
	}
	return &EventService{db: db, invalidator: invalidatorOrNop(invalidator)}, nil
}

// Create stores one event.
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	if input.Date.IsZero() {
		return nil, ErrInvalidDate
	}
	events, err := s.CreateRange(ctx, CreateEventRangeInput{
		TeamID:      input.TeamID,
		Title:       input.Title,
		StartDate:   input.Date,
		EndDate:     input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Description: input.Description,
	})
	if err != nil {
		return nil, err
	}
	return &events[0], nil
}

// CreateRange stores one event per day of the range in a single transaction.
func (s *EventService) CreateRange(ctx context.Context, input CreateEventRangeInput) ([]models.Event, error) {
	ctx = ensureContext(ctx)

	team, err := loadTeam(ctx, s.db, input.TeamID)
	if err != nil {
		return nil, err
	}

	title, err := requireText("title", input.Title, maxEventTitleLength)
	if err != nil {
		return nil, err
	}
	start, end := optionalClock(input.StartTime), optionalClock(input.EndTime)
	if err := validateTimeWindow(stringValue(start), stringValue(end)); err != nil {
		return nil, err
	}
	description, err := optionalText("description", input.Description, maxEventDescriptionLength)
	if err != nil {
		return nil, err
	}

	template := models.Event{
		TeamID:      team.ID,
		Title:       title,
		StartTime:   start,
		EndTime:     end,
		Description: description,
	}
	events, err := calendar.Expand(input.StartDate, input.EndDate, template, func(e models.Event, day models.Date) models.Event {
		e.Date = day
		return e
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&events, 100).Error
	}); err != nil {
		return nil, fmt.Errorf("event service: create events: %w", err)
	}
	metrics.RangeExpansionDays.WithLabelValues("event").Observe(float64(len(events)))

	s.invalidator.InvalidateTeam(ctx, team)
	return events, nil
}

// Get loads an event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	ctx = ensureContext(ctx)

	var event models.Event
	err := s.db.WithContext(ctx).First(&event, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("event service: load event: %w", err)
	}
	return &event, nil
}

// Update edits a single event. Range expansion never applies to edits.
func (s *EventService) Update(ctx context.Context, id string, input UpdateEventInput) (*models.Event, error) {
	ctx = ensureContext(ctx)

	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title, err := requireText("title", *input.Title, maxEventTitleLength)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, ErrInvalidDate
		}
		updates["date"] = *input.Date
	}

	start, end := event.StartTime, event.EndTime
	if input.StartTime != nil {
		start = optionalClock(input.StartTime)
		updates["start_time"] = start
	}
	if input.EndTime != nil {
		end = optionalClock(input.EndTime)
		updates["end_time"] = end
	}
	if err := validateTimeWindow(stringValue(start), stringValue(end)); err != nil {
		return nil, err
	}

	if input.Description != nil {
		description, err := optionalText("description", input.Description, maxEventDescriptionLength)
		if err != nil {
			return nil, err
		}
		updates["description"] = description
	}

	if len(updates) == 0 {
		return event, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", event.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("event service: update event: %w", err)
	}

	updated, err := s.Get(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	s.invalidateTeamOf(ctx, updated.TeamID)
	return updated, nil
}

// Delete removes an event. Deleting an unknown id reports ErrEventNotFound.
func (s *EventService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", event.ID)
	if result.Error != nil {
		return fmt.Errorf("event service: delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	s.invalidateTeamOf(ctx, event.TeamID)
	return nil
}

// ListBetween returns the team's events dated inside [from, to] ordered by date and time.
// All-day events sort before timed ones because their start time is empty.
func (s *EventService) ListBetween(ctx context.Context, teamID string, from, to models.Date) ([]models.Event, error) {
	ctx = ensureContext(ctx)

	events := make([]models.Event, 0)
	err := s.db.WithContext(ctx).
		Where("team_id = ?", strings.TrimSpace(teamID)).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("event service: list events: %w", err)
	}

	items := calendar.Items(events, nil)
	calendar.SortItems(items)
	sorted := make([]models.Event, len(items))
	for i, item := range items {
		sorted[i] = *item.Event
	}
	return sorted, nil
}

// ListByMonth returns the events of the calendar month containing anchor.
func (s *EventService) ListByMonth(ctx context.Context, teamID string, anchor models.Date) ([]models.Event, error) {
	window, err := calendar.Window(calendar.ViewMonth, anchor)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return s.ListBetween(ctx, teamID, window.From, window.To)
}

func (s *EventService) invalidateTeamOf(ctx context.Context, teamID string) {
	team, err := loadTeam(ctx, s.db, teamID)
	if err != nil {
		return
	}
	s.invalidator.InvalidateTeam(ctx, team)
}
