package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamcal/internal/calendar"
	"github.com/charlesng35/teamcal/internal/models"
)

func TestScheduleServiceCreateRangeExpandsDays(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	member := svc.mustMember(t, team, "ana")
	before := svc.invalidator.count()

	schedules, err := svc.schedules.CreateRange(ctx, CreateScheduleRangeInput{
		TeamID:    team.ID,
		MemberID:  member.ID,
		StartDate: day("2024-01-30"),
		EndDate:   day("2024-02-01"),
		StartTime: "15:00",
		EndTime:   "17:30",
		Task:      strPtr(" build arm "),
	})
	require.NoError(t, err)
	require.Len(t, schedules, 3)
	require.Equal(t, before+1, svc.invalidator.count(), "one invalidation per range")

	wantDays := []string{"2024-01-30", "2024-01-31", "2024-02-01"}
	for i, schedule := range schedules {
		require.Equal(t, wantDays[i], schedule.Date.String())
		require.Equal(t, "15:00", schedule.StartTime)
		require.Equal(t, "17:30", schedule.EndTime)
		require.NotNil(t, schedule.Task)
		require.Equal(t, "build arm", *schedule.Task)
		require.NotEmpty(t, schedule.ID)
	}

	stored, err := svc.schedules.ListBetween(ctx, team.ID, day("2024-01-01"), day("2024-12-31"))
	require.NoError(t, err)
	require.Len(t, stored, 3)
	require.Equal(t, "ana", stored[0].Member.Nickname)
}

func TestScheduleServiceCreateRangeRejectsReversedRange(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	member := svc.mustMember(t, team, "ana")

	_, err := svc.schedules.CreateRange(ctx, CreateScheduleRangeInput{
		TeamID: team.ID, MemberID: member.ID,
		StartDate: day("2024-02-03"), EndDate: day("2024-02-01"),
		StartTime: "09:00", EndTime: "10:00",
	})
	require.ErrorIs(t, err, calendar.ErrInvalidRange)

	_, err = svc.schedules.CreateRange(ctx, CreateScheduleRangeInput{
		TeamID: team.ID, MemberID: member.ID,
		StartDate: day("2024-01-01"), EndDate: day("2025-06-01"),
		StartTime: "09:00", EndTime: "10:00",
	})
	require.ErrorIs(t, err, calendar.ErrRangeTooLong)

	stored, err := svc.schedules.ListBetween(ctx, team.ID, day("2020-01-01"), day("2030-01-01"))
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestScheduleServiceCreateValidation(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	other := svc.mustTeam(t, "OTHER1")
	member := svc.mustMember(t, team, "ana")
	stranger := svc.mustMember(t, other, "bob")

	base := CreateScheduleInput{TeamID: team.ID, MemberID: member.ID, Date: day("2024-03-01"), StartTime: "09:00", EndTime: "10:00"}

	cases := []struct {
		name   string
		mutate func(*CreateScheduleInput)
		want   error
	}{
		{"missing start", func(in *CreateScheduleInput) { in.StartTime = "" }, ErrInvalidTime},
		{"malformed end", func(in *CreateScheduleInput) { in.EndTime = "25:00" }, ErrInvalidTime},
		{"single digit hour", func(in *CreateScheduleInput) { in.StartTime = "9:00" }, ErrInvalidTime},
		{"start equals end", func(in *CreateScheduleInput) { in.EndTime = "09:00" }, ErrInvalidTimeRange},
		{"start after end", func(in *CreateScheduleInput) { in.StartTime = "11:00" }, ErrInvalidTimeRange},
		{"missing date", func(in *CreateScheduleInput) { in.Date = models.Date{} }, ErrInvalidDate},
		{"member of another team", func(in *CreateScheduleInput) { in.MemberID = stranger.ID }, ErrMemberNotFound},
		{"unknown member", func(in *CreateScheduleInput) { in.MemberID = "missing" }, ErrMemberNotFound},
		{"unknown team", func(in *CreateScheduleInput) { in.TeamID = "missing" }, ErrTeamNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := base
			tc.mutate(&input)
			_, err := svc.schedules.Create(ctx, input)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestScheduleServiceUpdate(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	member := svc.mustMember(t, team, "ana")

	schedule, err := svc.schedules.Create(ctx, CreateScheduleInput{
		TeamID: team.ID, MemberID: member.ID, Date: day("2024-03-01"),
		StartTime: "09:00", EndTime: "10:00", Task: strPtr("wiring"),
	})
	require.NoError(t, err)

	updated, err := svc.schedules.Update(ctx, schedule.ID, UpdateScheduleInput{EndTime: strPtr("12:00")})
	require.NoError(t, err)
	require.Equal(t, "09:00", updated.StartTime)
	require.Equal(t, "12:00", updated.EndTime)
	require.NotNil(t, updated.Task)
	require.Equal(t, "wiring", *updated.Task)
	require.Equal(t, "2024-03-01", updated.Date.String())

	updated, err = svc.schedules.Update(ctx, schedule.ID, UpdateScheduleInput{Task: strPtr("")})
	require.NoError(t, err)
	require.Nil(t, updated.Task)

	_, err = svc.schedules.Update(ctx, schedule.ID, UpdateScheduleInput{StartTime: strPtr("13:00")})
	require.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.schedules.Update(ctx, "missing", UpdateScheduleInput{})
	require.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestScheduleServiceDeleteTwice(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	member := svc.mustMember(t, team, "ana")

	schedule, err := svc.schedules.Create(ctx, CreateScheduleInput{
		TeamID: team.ID, MemberID: member.ID, Date: day("2024-03-01"), StartTime: "09:00", EndTime: "10:00",
	})
	require.NoError(t, err)

	require.NoError(t, svc.schedules.Delete(ctx, schedule.ID))
	require.ErrorIs(t, svc.schedules.Delete(ctx, schedule.ID), ErrScheduleNotFound)
}

func TestScheduleServiceWindows(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	member := svc.mustMember(t, team, "ana")

	for _, date := range []string{"2024-05-31", "2024-06-02", "2024-06-03", "2024-06-30", "2024-07-01"} {
		_, err := svc.schedules.Create(ctx, CreateScheduleInput{
			TeamID: team.ID, MemberID: member.ID, Date: day(date), StartTime: "09:00", EndTime: "10:00",
		})
		require.NoError(t, err)
	}

	dayList, err := svc.schedules.ListByDay(ctx, team.ID, day("2024-06-02"))
	require.NoError(t, err)
	require.Len(t, dayList, 1)

	// 2024-06-02 is a Sunday: its week starts on Monday 2024-05-27.
	week, err := svc.schedules.ListByWeek(ctx, team.ID, day("2024-06-02"))
	require.NoError(t, err)
	require.Len(t, week, 2)
	require.Equal(t, "2024-05-31", week[0].Date.String())

	month, err := svc.schedules.ListByMonth(ctx, team.ID, day("2024-06-15"))
	require.NoError(t, err)
	require.Len(t, month, 3)
	require.Equal(t, "2024-06-02", month[0].Date.String())
	require.Equal(t, "2024-06-30", month[2].Date.String())
}

func TestScheduleServiceListOrdersByTime(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	ana := svc.mustMember(t, team, "ana")
	ben := svc.mustMember(t, team, "ben")

	_, err := svc.schedules.Create(ctx, CreateScheduleInput{TeamID: team.ID, MemberID: ana.ID, Date: day("2024-06-03"), StartTime: "14:00", EndTime: "16:00"})
	require.NoError(t, err)
	_, err = svc.schedules.Create(ctx, CreateScheduleInput{TeamID: team.ID, MemberID: ben.ID, Date: day("2024-06-03"), StartTime: "09:00", EndTime: "12:00"})
	require.NoError(t, err)
	_, err = svc.schedules.Create(ctx, CreateScheduleInput{TeamID: team.ID, MemberID: ana.ID, Date: day("2024-06-03"), StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	list, err := svc.schedules.ListByDay(ctx, team.ID, day("2024-06-03"))
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "09:00-10:00", list[0].StartTime+"-"+list[0].EndTime)
	require.Equal(t, "09:00-12:00", list[1].StartTime+"-"+list[1].EndTime)
	require.Equal(t, "14:00-16:00", list[2].StartTime+"-"+list[2].EndTime)
	require.Equal(t, "ben", list[1].Member.Nickname)
}
