package calendar

import (
	"time"

	"github.com/charlesng35/teamcal/internal/models"
)

// Kind discriminates calendar items.
type Kind string

const (
	KindEvent    Kind = "event"
	KindSchedule Kind = "schedule"
)

// Item is one entry on a calendar day. Exactly one of Event or Schedule is set,
// matching Kind.
type Item struct {
	Kind     Kind             `json:"kind"`
	Event    *models.Event    `json:"event,omitempty"`
	Schedule *models.Schedule `json:"schedule,omitempty"`
}

// EventItem wraps an event.
func EventItem(event *models.Event) Item {
	return Item{Kind: KindEvent, Event: event}
}

// ScheduleItem wraps a schedule.
func ScheduleItem(schedule *models.Schedule) Item {
	return Item{Kind: KindSchedule, Schedule: schedule}
}

// Items merges events and schedules into one list, events first.
func Items(events []models.Event, schedules []models.Schedule) []Item {
	items := make([]Item, 0, len(events)+len(schedules))
	for i := range events {
		items = append(items, EventItem(&events[i]))
	}
	for i := range schedules {
		items = append(items, ScheduleItem(&schedules[i]))
	}
	return items
}

// Date returns the day the item belongs to.
func (i Item) Date() models.Date {
	switch i.Kind {
	case KindEvent:
		if i.Event != nil {
			return i.Event.Date
		}
	case KindSchedule:
		if i.Schedule != nil {
			return i.Schedule.Date
		}
	}
	return models.Date{}
}

// IsAllDay reports whether the item has no time of day. Schedules are always timed.
func (i Item) IsAllDay() bool {
	return i.Kind == KindEvent && i.Event != nil && i.Event.IsAllDay()
}

// StartTime returns the HH:MM start or an empty string.
func (i Item) StartTime() string {
	switch {
	case i.Kind == KindEvent && i.Event != nil:
		return deref(i.Event.StartTime)
	case i.Kind == KindSchedule && i.Schedule != nil:
		return i.Schedule.StartTime
	}
	return ""
}

// EndTime returns the HH:MM end or an empty string.
func (i Item) EndTime() string {
	switch {
	case i.Kind == KindEvent && i.Event != nil:
		return deref(i.Event.EndTime)
	case i.Kind == KindSchedule && i.Schedule != nil:
		return i.Schedule.EndTime
	}
	return ""
}

// CreatedAt returns the creation instant of the wrapped record.
func (i Item) CreatedAt() time.Time {
	switch {
	case i.Kind == KindEvent && i.Event != nil:
		return i.Event.CreatedAt
	case i.Kind == KindSchedule && i.Schedule != nil:
		return i.Schedule.CreatedAt
	}
	return time.Time{}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
