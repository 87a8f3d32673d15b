package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamcal/internal/models"
)

func TestMemberServiceAddDefaultsColor(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")

	member, err := svc.members.Add(ctx, team.ID, "  ana ", "")
	require.NoError(t, err)
	require.Equal(t, "ana", member.Nickname)
	require.Equal(t, models.DefaultMemberColor, member.Color)
	require.Equal(t, team.ID, member.TeamID)

	colored, err := svc.members.Add(ctx, team.ID, "ben", "Green")
	require.NoError(t, err)
	require.Equal(t, "green", colored.Color)
}

func TestMemberServiceAddValidation(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")

	_, err := svc.members.Add(ctx, team.ID, "ana", "magenta-ish")
	require.ErrorIs(t, err, ErrInvalidColor)

	_, err = svc.members.Add(ctx, team.ID, "   ", "")
	require.Error(t, err)

	_, err = svc.members.Add(ctx, "missing", "ana", "")
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestMemberServiceUpdate(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	member := svc.mustMember(t, team, "ana")
	before := svc.invalidator.count()

	updated, err := svc.members.Update(ctx, member.ID, UpdateMemberInput{Color: strPtr("red")})
	require.NoError(t, err)
	require.Equal(t, "ana", updated.Nickname)
	require.Equal(t, "red", updated.Color)
	require.Equal(t, before+1, svc.invalidator.count())
	require.Equal(t, "ROBOT1", svc.invalidator.last())

	updated, err = svc.members.Update(ctx, member.ID, UpdateMemberInput{Nickname: strPtr("Anabel")})
	require.NoError(t, err)
	require.Equal(t, "Anabel", updated.Nickname)
	require.Equal(t, "red", updated.Color)

	_, err = svc.members.Update(ctx, member.ID, UpdateMemberInput{Color: strPtr("ultraviolet")})
	require.ErrorIs(t, err, ErrInvalidColor)

	_, err = svc.members.Update(ctx, "missing", UpdateMemberInput{Nickname: strPtr("x")})
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberServiceDeleteRemovesSchedules(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	member := svc.mustMember(t, team, "ana")
	keep := svc.mustMember(t, team, "ben")

	gone, err := svc.schedules.Create(ctx, CreateScheduleInput{
		TeamID: team.ID, MemberID: member.ID, Date: day("2024-03-01"), StartTime: "09:00", EndTime: "10:00",
	})
	require.NoError(t, err)
	kept, err := svc.schedules.Create(ctx, CreateScheduleInput{
		TeamID: team.ID, MemberID: keep.ID, Date: day("2024-03-01"), StartTime: "09:00", EndTime: "10:00",
	})
	require.NoError(t, err)

	require.NoError(t, svc.members.Delete(ctx, member.ID))

	_, err = svc.schedules.Get(ctx, gone.ID)
	require.ErrorIs(t, err, ErrScheduleNotFound)
	_, err = svc.schedules.Get(ctx, kept.ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.members.Delete(ctx, member.ID), ErrMemberNotFound)
}

func TestMemberServiceListByTeamOrdersByNickname(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	team := svc.mustTeam(t, "ROBOT1")
	other := svc.mustTeam(t, "OTHER1")

	svc.mustMember(t, team, "zed")
	svc.mustMember(t, team, "amy")
	svc.mustMember(t, other, "bob")

	members, err := svc.members.ListByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "amy", members[0].Nickname)
	require.Equal(t, "zed", members[1].Nickname)

	empty, err := svc.members.ListByTeam(ctx, "missing")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}
