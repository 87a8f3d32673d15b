package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamcal/internal/cache"
	"github.com/charlesng35/teamcal/internal/calendar"
	"github.com/charlesng35/teamcal/internal/models"
)

func newCalendarService(t *testing.T, svc *testServices, store cache.Store) *CalendarService {
	t.Helper()
	calendars, err := NewCalendarService(svc.schedules, svc.events, store, 0)
	require.NoError(t, err)
	return calendars
}

func TestCalendarServiceMonthViewIsWeekGrid(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	member := svc.mustMember(t, team, "ana")

	_, err := svc.schedules.Create(ctx, CreateScheduleInput{TeamID: team.ID, MemberID: member.ID, Date: day("2024-02-14"), StartTime: "09:00", EndTime: "11:00"})
	require.NoError(t, err)
	_, err = svc.events.Create(ctx, CreateEventInput{TeamID: team.ID, Title: "Build day", Date: day("2024-02-14")})
	require.NoError(t, err)
	_, err = svc.events.Create(ctx, CreateEventInput{TeamID: team.ID, Title: "Early", Date: day("2024-02-14"), StartTime: strPtr("07:00")})
	require.NoError(t, err)

	calendars := newCalendarService(t, svc, nil)
	view, err := calendars.View(ctx, team.ID, calendar.ViewMonth, day("2024-02-10"), day("2024-02-14"))
	require.NoError(t, err)

	// February 2024 starts on a Thursday and ends on a Thursday.
	require.Equal(t, "2024-01-29", view.From.String())
	require.Equal(t, "2024-03-03", view.To.String())
	require.Equal(t, "2024-02-01", view.Focus.From.String())
	require.Equal(t, "2024-02-29", view.Focus.To.String())
	require.Len(t, view.Days, 35)

	require.False(t, view.Days[0].InFocus)
	require.True(t, view.Days[0].IsPast)
	require.NotNil(t, view.Days[0].Items)
	require.Empty(t, view.Days[0].Items)

	var busy calendar.DayBucket
	for _, bucket := range view.Days {
		if bucket.Date.String() == "2024-02-14" {
			busy = bucket
		}
	}
	require.True(t, busy.IsToday)
	require.False(t, busy.IsPast)
	require.True(t, busy.InFocus)
	require.Len(t, busy.Items, 3)
	require.Equal(t, calendar.KindEvent, busy.Items[0].Kind)
	require.Equal(t, "Build day", busy.Items[0].Event.Title)
	require.Equal(t, "Early", busy.Items[1].Event.Title)
	require.Equal(t, calendar.KindSchedule, busy.Items[2].Kind)
	require.Equal(t, "ana", busy.Items[2].Schedule.Member.Nickname)
}

func TestCalendarServiceListViewSkipsEmptyDays(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")

	_, err := svc.events.Create(ctx, CreateEventInput{TeamID: team.ID, Title: "Kickoff", Date: day("2024-09-07")})
	require.NoError(t, err)
	_, err = svc.events.Create(ctx, CreateEventInput{TeamID: team.ID, Title: "Outside", Date: day("2024-10-01")})
	require.NoError(t, err)

	calendars := newCalendarService(t, svc, nil)
	view, err := calendars.View(ctx, team.ID, calendar.ViewList, day("2024-09-20"), day("2024-09-01"))
	require.NoError(t, err)
	require.Len(t, view.Days, 1)
	require.Equal(t, "2024-09-07", view.Days[0].Date.String())

	week, err := calendars.View(ctx, team.ID, calendar.ViewWeek, day("2024-09-07"), day("2024-09-01"))
	require.NoError(t, err)
	require.Len(t, week.Days, 7)
	require.Equal(t, "2024-09-02", week.From.String())
}

func TestCalendarServiceCacheFollowsInvalidation(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	store := cache.NewDatabaseStore(svc.db)
	signal := NewTeamSignal(store, nil)

	teams, err := NewTeamService(svc.db, signal)
	require.NoError(t, err)
	events, err := NewEventService(svc.db, signal)
	require.NoError(t, err)
	calendars, err := NewCalendarService(svc.schedules, events, store, 0)
	require.NoError(t, err)

	team, err := teams.Create(ctx, CreateTeamInput{Name: "Robots", Code: "ROBOT1", AdminCode: "admin1"})
	require.NoError(t, err)

	first, err := calendars.View(ctx, team.ID, calendar.ViewDay, day("2024-05-01"), day("2024-05-01"))
	require.NoError(t, err)
	require.Len(t, first.Days, 1)
	require.Empty(t, first.Days[0].Items)

	// Writes that bypass the invalidator are not visible until the cached view expires.
	_, err = svc.events.Create(ctx, CreateEventInput{TeamID: team.ID, Title: "Silent", Date: day("2024-05-01")})
	require.NoError(t, err)
	cached, err := calendars.View(ctx, team.ID, calendar.ViewDay, day("2024-05-01"), day("2024-05-01"))
	require.NoError(t, err)
	require.Empty(t, cached.Days[0].Items)

	_, err = events.Create(ctx, CreateEventInput{TeamID: team.ID, Title: "Loud", Date: day("2024-05-01")})
	require.NoError(t, err)
	fresh, err := calendars.View(ctx, team.ID, calendar.ViewDay, day("2024-05-01"), day("2024-05-01"))
	require.NoError(t, err)
	require.Len(t, fresh.Days[0].Items, 2)
}

func TestCalendarServiceRejectsZeroAnchor(t *testing.T) {
	svc := newTestServices(t)
	calendars := newCalendarService(t, svc, nil)

	_, err := calendars.View(context.Background(), "team", calendar.ViewMonth, models.Date{}, day("2024-05-01"))
	require.ErrorIs(t, err, ErrInvalidDate)
}
