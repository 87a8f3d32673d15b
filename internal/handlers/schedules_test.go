package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamcal/internal/handlers/testutil"
	"github.com/charlesng35/teamcal/internal/models"
)

func TestScheduleCreateSingleAndRange(t *testing.T) {
	env := testutil.NewEnv(t)
	createTeam(env, "Robotics", "ROBOT1", "admin1")
	ada := addMember(env, "ROBOT1", "Ada", "")

	single := testutil.MustData[models.Schedule](env, http.MethodPost, "/api/teams/ROBOT1/schedules", map[string]any{
		"member_id":  ada.ID,
		"date":       "2024-02-14",
		"start_time": "09:00",
		"end_time":   "12:30",
		"task":       "lab",
	}, http.StatusCreated)
	require.Equal(t, "2024-02-14", single.Date.String())
	require.Equal(t, "lab", *single.Task)

	w := env.Request(http.MethodPost, "/api/teams/ROBOT1/schedules", map[string]any{
		"member_id":  ada.ID,
		"start_date": "2024-02-28",
		"end_date":   "2024-03-01",
		"start_time": "13:00",
		"end_time":   "17:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, 3, resp.Meta.Total)

	var schedules []models.Schedule
	testutil.DecodeInto(t, resp.Data, &schedules)
	require.Equal(t, "2024-02-28", schedules[0].Date.String())
	require.Equal(t, "2024-02-29", schedules[1].Date.String())
	require.Equal(t, "2024-03-01", schedules[2].Date.String())
	for _, schedule := range schedules {
		require.Equal(t, "13:00", schedule.StartTime)
		require.Equal(t, "17:00", schedule.EndTime)
	}
}

func TestScheduleCreateValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	createTeam(env, "Robotics", "ROBOT1", "admin1")
	createTeam(env, "Other", "OTHER1", "admin1")
	ada := addMember(env, "ROBOT1", "Ada", "")
	outsider := addMember(env, "OTHER1", "Bob", "")

	base := func(overrides map[string]any) map[string]any {
		body := map[string]any{"member_id": ada.ID, "date": "2024-02-14", "start_time": "09:00", "end_time": "10:00"}
		for key, value := range overrides {
			if value == nil {
				delete(body, key)
				continue
			}
			body[key] = value
		}
		return body
	}

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"malformed time", base(map[string]any{"start_time": "9am"}), http.StatusBadRequest, "BAD_REQUEST"},
		{"start after end", base(map[string]any{"start_time": "11:00"}), http.StatusBadRequest, "INVALID_TIME_RANGE"},
		{"equal times", base(map[string]any{"end_time": "09:00"}), http.StatusBadRequest, "INVALID_TIME_RANGE"},
		{"no date", base(map[string]any{"date": nil}), http.StatusBadRequest, "BAD_REQUEST"},
		{"date and range", base(map[string]any{"start_date": "2024-02-14", "end_date": "2024-02-15"}), http.StatusBadRequest, "BAD_REQUEST"},
		{"reversed range", base(map[string]any{"date": nil, "start_date": "2024-02-15", "end_date": "2024-02-14"}), http.StatusBadRequest, "INVALID_DATE_RANGE"},
		{"range too long", base(map[string]any{"date": nil, "start_date": "2024-01-01", "end_date": "2025-06-01"}), http.StatusBadRequest, "DATE_RANGE_TOO_LONG"},
		{"member of another team", base(map[string]any{"member_id": outsider.ID}), http.StatusNotFound, "MEMBER_NOT_FOUND"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.code, env.ErrorCode(http.MethodPost, "/api/teams/ROBOT1/schedules", tc.body, tc.status))
		})
	}

	var count int64
	require.NoError(t, env.DB.Model(&models.Schedule{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestScheduleUpdateAndDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	createTeam(env, "Robotics", "ROBOT1", "admin1")
	ada := addMember(env, "ROBOT1", "Ada", "")

	schedule := testutil.MustData[models.Schedule](env, http.MethodPost, "/api/teams/ROBOT1/schedules", map[string]any{
		"member_id": ada.ID, "date": "2024-02-14", "start_time": "09:00", "end_time": "10:00", "task": "lab",
	}, http.StatusCreated)

	updated := testutil.MustData[models.Schedule](env, http.MethodPatch, "/api/schedules/"+schedule.ID, map[string]any{
		"end_time": "11:15",
		"task":     "",
	}, http.StatusOK)
	require.Equal(t, "09:00", updated.StartTime)
	require.Equal(t, "11:15", updated.EndTime)
	require.Nil(t, updated.Task)
	require.Equal(t, ada.ID, updated.MemberID)

	require.Equal(t, "INVALID_TIME_RANGE", env.ErrorCode(http.MethodPatch, "/api/schedules/"+schedule.ID, map[string]any{"start_time": "12:00"}, http.StatusBadRequest))

	testutil.MustData[map[string]bool](env, http.MethodDelete, "/api/schedules/"+schedule.ID, nil, http.StatusOK)
	require.Equal(t, "SCHEDULE_NOT_FOUND", env.ErrorCode(http.MethodDelete, "/api/schedules/"+schedule.ID, nil, http.StatusNotFound))
}
