package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/database/testutil"
	"github.com/charlesng35/teamcal/internal/models"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	teams []string
}

func (r *recordingInvalidator) InvalidateTeam(_ context.Context, team *models.Team) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams = append(r.teams, team.Code)
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.teams)
}

func (r *recordingInvalidator) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.teams) == 0 {
		return ""
	}
	return r.teams[len(r.teams)-1]
}

type testServices struct {
	db          *gorm.DB
	invalidator *recordingInvalidator
	teams       *TeamService
	members     *MemberService
	schedules   *ScheduleService
	events      *EventService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	inv := &recordingInvalidator{}

	teams, err := NewTeamService(db, inv)
	require.NoError(t, err)
	members, err := NewMemberService(db, inv)
	require.NoError(t, err)
	schedules, err := NewScheduleService(db, inv)
	require.NoError(t, err)
	events, err := NewEventService(db, inv)
	require.NoError(t, err)

	return &testServices{
		db:          db,
		invalidator: inv,
		teams:       teams,
		members:     members,
		schedules:   schedules,
		events:      events,
	}
}

func (s *testServices) mustTeam(t *testing.T, code string) *models.Team {
	t.Helper()
	team, err := s.teams.Create(context.Background(), CreateTeamInput{Name: "Team " + code, Code: code, AdminCode: "admin1"})
	require.NoError(t, err)
	return team
}

func (s *testServices) mustMember(t *testing.T, team *models.Team, nickname string) *models.Member {
	t.Helper()
	member, err := s.members.Add(context.Background(), team.ID, nickname, "")
	require.NoError(t, err)
	return member
}

func strPtr(value string) *string {
	return &value
}

func day(value string) models.Date {
	return models.MustParseDate(value)
}
