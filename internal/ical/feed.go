// Package ical renders a team's calendar as an iCalendar feed.
package ical

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/charlesng35/teamcal/internal/models"
)

const (
	productID = "-//teamcal//team calendar//EN"
	uidDomain = "teamcal"
)

// FeedOptions tunes rendering. Location interprets the HH:MM wall-clock times stored on
// schedules and events; it defaults to UTC.
type FeedOptions struct {
	Location *time.Location
	Now      time.Time
}

// Feed renders events and schedules of team as a VCALENDAR document. All-day events become
// DATE valued entries; timed entries are converted to UTC.
func Feed(team *models.Team, events []models.Event, schedules []models.Schedule, opts FeedOptions) string {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if team != nil {
		cal.SetXWRCalName(team.Name)
	}
	cal.SetXWRTimezone(loc.String())

	for i := range events {
		addEvent(cal, &events[i], loc, now)
	}
	for i := range schedules {
		addSchedule(cal, &schedules[i], loc, now)
	}

	return cal.Serialize()
}

func addEvent(cal *ics.Calendar, event *models.Event, loc *time.Location, now time.Time) {
	vevent := cal.AddEvent(uid("event", event.ID))
	vevent.SetDtStampTime(now)
	if !event.CreatedAt.IsZero() {
		vevent.SetCreatedTime(event.CreatedAt)
	}
	if !event.UpdatedAt.IsZero() {
		vevent.SetModifiedAt(event.UpdatedAt)
	}
	vevent.SetSummary(event.Title)
	if event.Description != nil && *event.Description != "" {
		vevent.SetDescription(*event.Description)
	}

	if event.IsAllDay() {
		vevent.SetAllDayStartAt(event.Date.Time())
		vevent.SetAllDayEndAt(event.Date.AddDays(1).Time())
		return
	}

	start := wallClock(event.Date, deref(event.StartTime), loc)
	end := start.Add(time.Hour)
	if event.EndTime != nil && *event.EndTime != "" {
		end = wallClock(event.Date, *event.EndTime, loc)
	}
	if event.StartTime == nil || *event.StartTime == "" {
		// Only an end time: treat the entry as ending at that time on its day.
		start = end.Add(-time.Hour)
	}
	vevent.SetStartAt(start)
	vevent.SetEndAt(end)
}

func addSchedule(cal *ics.Calendar, schedule *models.Schedule, loc *time.Location, now time.Time) {
	vevent := cal.AddEvent(uid("schedule", schedule.ID))
	vevent.SetDtStampTime(now)
	if !schedule.CreatedAt.IsZero() {
		vevent.SetCreatedTime(schedule.CreatedAt)
	}

	summary := "Schedule"
	if schedule.Member != nil && schedule.Member.Nickname != "" {
		summary = schedule.Member.Nickname
	}
	if schedule.Task != nil && *schedule.Task != "" {
		summary += ": " + *schedule.Task
	}
	vevent.SetSummary(summary)
	vevent.SetStartAt(wallClock(schedule.Date, schedule.StartTime, loc))
	vevent.SetEndAt(wallClock(schedule.Date, schedule.EndTime, loc))
}

func uid(kind, id string) string {
	return kind + "-" + id + "@" + uidDomain
}

// wallClock combines a civil day with an HH:MM time in loc. Malformed times fall back to
// midnight.
func wallClock(day models.Date, clock string, loc *time.Location) time.Time {
	hour, minute := 0, 0
	if parsed, err := time.Parse("15:04", strings.TrimSpace(clock)); err == nil {
		hour, minute = parsed.Hour(), parsed.Minute()
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
