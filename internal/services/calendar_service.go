package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/teamcal/internal/cache"
	"github.com/charlesng35/teamcal/internal/calendar"
	"github.com/charlesng35/teamcal/internal/models"
	"github.com/charlesng35/teamcal/pkg/logger"
	"github.com/charlesng35/teamcal/pkg/metrics"
)

// DefaultCalendarTTL is used when no cache TTL is configured.
const DefaultCalendarTTL = 5 * time.Minute

// CalendarView is a bucketed calendar for one team and one window.
type CalendarView struct {
	View   calendar.View        `json:"view"`
	Anchor models.Date          `json:"anchor"`
	From   models.Date          `json:"from"`
	To     models.Date          `json:"to"`
	Focus  calendar.Range       `json:"focus"`
	Days   []calendar.DayBucket `json:"days"`
}

// CalendarService answers calendar queries: it fetches the schedules and events of a
// window, buckets them per day and caches the result until the team is invalidated.
type CalendarService struct {
	schedules *ScheduleService
	events    *EventService
	store     cache.Store
	ttl       time.Duration
}

// NewCalendarService constructs a CalendarService. A nil store disables caching.
func NewCalendarService(schedules *ScheduleService, events *EventService, store cache.Store, ttl time.Duration) (*CalendarService, error) {
	if schedules == nil || events == nil {
		return nil, errors.New("calendar service: schedule and event services are required")
	}
	if ttl <= 0 {
		ttl = DefaultCalendarTTL
	}
	return &CalendarService{schedules: schedules, events: events, store: store, ttl: ttl}, nil
}

// View builds the calendar for view around anchor. today drives the is_today and is_past
// flags. The month view is laid out as a grid of whole weeks with the month in focus.
func (s *CalendarService) View(ctx context.Context, teamID string, view calendar.View, anchor, today models.Date) (*CalendarView, error) {
	ctx = ensureContext(ctx)

	layout, err := layoutFor(view, anchor, today)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if s.store != nil {
		if version, err := calendarVersion(ctx, s.store, teamID); err != nil {
			logger.WithModule("calendar").Warn("read calendar version", zap.String("team_id", teamID), zap.Error(err))
		} else {
			cacheKey = fmt.Sprintf("calendar:%s:%s:%s:%s:%s", teamID, version, view, layout.Window.From, today)
			if cached, ok := s.fromCache(ctx, cacheKey); ok {
				cached.Anchor = anchor
				return cached, nil
			}
		}
	}

	events, err := s.events.ListBetween(ctx, teamID, layout.Window.From, layout.Window.To)
	if err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListBetween(ctx, teamID, layout.Window.From, layout.Window.To)
	if err != nil {
		return nil, err
	}

	result := &CalendarView{
		View:   view,
		Anchor: anchor,
		From:   layout.Window.From,
		To:     layout.Window.To,
		Focus:  layout.Focus,
		Days:   calendar.Bucket(calendar.Items(events, schedules), layout),
	}

	if cacheKey != "" {
		s.toCache(ctx, cacheKey, result)
	}
	return result, nil
}

func layoutFor(view calendar.View, anchor, today models.Date) (calendar.Layout, error) {
	if anchor.IsZero() {
		return calendar.Layout{}, ErrInvalidDate
	}

	windowView := view
	if view == calendar.ViewMonth {
		windowView = calendar.ViewGrid
	}
	window, err := calendar.Window(windowView, anchor)
	if err != nil {
		return calendar.Layout{}, err
	}

	focus := window
	if view == calendar.ViewMonth || view == calendar.ViewGrid {
		if focus, err = calendar.Window(calendar.ViewMonth, anchor); err != nil {
			return calendar.Layout{}, err
		}
	}

	return calendar.Layout{
		Window:    window,
		Focus:     focus,
		Today:     today,
		FillEmpty: view.FillsEmptyDays(),
	}, nil
}

func (s *CalendarService) fromCache(ctx context.Context, key string) (*CalendarView, bool) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logger.WithModule("calendar").Warn("read cached view", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		metrics.CalendarCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	var view CalendarView
	if err := json.Unmarshal(raw, &view); err != nil {
		metrics.CalendarCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CalendarCache.WithLabelValues("hit").Inc()
	return &view, true
}

func (s *CalendarService) toCache(ctx context.Context, key string, view *CalendarView) {
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, key, payload, s.ttl); err != nil {
		logger.WithModule("calendar").Warn("store cached view", zap.String("key", key), zap.Error(err))
	}
}
