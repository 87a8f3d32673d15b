package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamcal/internal/handlers/testutil"
	"github.com/charlesng35/teamcal/internal/models"
)

func TestEventCreateVariants(t *testing.T) {
	env := testutil.NewEnv(t)
	createTeam(env, "Robotics", "ROBOT1", "admin1")

	allDay := testutil.MustData[models.Event](env, http.MethodPost, "/api/teams/ROBOT1/events", map[string]any{
		"title": "Offsite",
		"date":  "2024-02-16",
	}, http.StatusCreated)
	require.True(t, allDay.IsAllDay())

	timed := testutil.MustData[models.Event](env, http.MethodPost, "/api/teams/ROBOT1/events", map[string]any{
		"title":       "Standup",
		"date":        "2024-02-16",
		"start_time":  "09:30",
		"end_time":    "09:45",
		"description": "daily",
	}, http.StatusCreated)
	require.False(t, timed.IsAllDay())
	require.Equal(t, "daily", *timed.Description)

	w := env.Request(http.MethodPost, "/api/teams/ROBOT1/events", map[string]any{
		"title":      "Trade fair",
		"start_date": "2024-02-19",
		"end_date":   "2024-02-23",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, 5, testutil.DecodeResponse(t, w).Meta.Total)

	require.Equal(t, "INVALID_TIME_RANGE", env.ErrorCode(http.MethodPost, "/api/teams/ROBOT1/events", map[string]any{
		"title": "Backwards", "date": "2024-02-16", "start_time": "10:00", "end_time": "09:00",
	}, http.StatusBadRequest))
	require.Equal(t, "BAD_REQUEST", env.ErrorCode(http.MethodPost, "/api/teams/ROBOT1/events", map[string]any{
		"date": "2024-02-16",
	}, http.StatusBadRequest))
	require.Equal(t, "BAD_REQUEST", env.ErrorCode(http.MethodPost, "/api/teams/ROBOT1/events", map[string]any{
		"title": "Bad day", "date": "2024-02-30",
	}, http.StatusBadRequest))
}

func TestEventUpdateKeepsAndClears(t *testing.T) {
	env := testutil.NewEnv(t)
	createTeam(env, "Robotics", "ROBOT1", "admin1")

	event := testutil.MustData[models.Event](env, http.MethodPost, "/api/teams/ROBOT1/events", map[string]any{
		"title": "Review", "date": "2024-02-16", "start_time": "14:00", "end_time": "15:00", "description": "sprint",
	}, http.StatusCreated)

	moved := testutil.MustData[models.Event](env, http.MethodPatch, "/api/events/"+event.ID, map[string]any{
		"date": "2024-02-20",
	}, http.StatusOK)
	require.Equal(t, "2024-02-20", moved.Date.String())
	require.Equal(t, "Review", moved.Title)
	require.Equal(t, "14:00", *moved.StartTime)
	require.Equal(t, "sprint", *moved.Description)

	cleared := testutil.MustData[models.Event](env, http.MethodPatch, "/api/events/"+event.ID, map[string]any{
		"start_time":  "",
		"end_time":    "",
		"description": "",
	}, http.StatusOK)
	require.True(t, cleared.IsAllDay())
	require.Nil(t, cleared.Description)

	testutil.MustData[map[string]bool](env, http.MethodDelete, "/api/events/"+event.ID, nil, http.StatusOK)
	require.Equal(t, "EVENT_NOT_FOUND", env.ErrorCode(http.MethodPatch, "/api/events/"+event.ID, map[string]any{"title": "Gone"}, http.StatusNotFound))
}

func TestEventUpdateBlankTimesMakeAllDay(t *testing.T) {
	env := testutil.NewEnv(t)
	createTeam(env, "Robotics", "ROBOT1", "admin1")

	event := testutil.MustData[models.Event](env, http.MethodPost, "/api/teams/ROBOT1/events", map[string]any{
		"title": "Workshop", "date": "2024-02-21", "start_time": "13:00", "end_time": "16:00",
	}, http.StatusCreated)
	require.False(t, event.IsAllDay())

	require.Equal(t, "BAD_REQUEST", env.ErrorCode(http.MethodPatch, "/api/events/"+event.ID, map[string]any{
		"start_time": "1pm",
	}, http.StatusBadRequest))

	w := env.Request(http.MethodPatch, "/api/events/"+event.ID, map[string]any{
		"start_time": "",
		"end_time":   "",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	allDay := testutil.MustData[models.Event](env, http.MethodPatch, "/api/events/"+event.ID, map[string]any{
		"title": "Workshop day",
	}, http.StatusOK)
	require.True(t, allDay.IsAllDay())
	require.Nil(t, allDay.StartTime)
	require.Nil(t, allDay.EndTime)
}
