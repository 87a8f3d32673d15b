package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	require.NoError(t, base.BeforeCreate(nil))
	require.NotEmpty(t, base.ID)

	preset := BaseModel{ID: "fixed"}
	require.NoError(t, preset.BeforeCreate(nil))
	require.Equal(t, "fixed", preset.ID)
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"team", func() *BaseModel {
			m := &Team{}
			return &m.BaseModel
		}},
		{"member", func() *BaseModel {
			m := &Member{}
			return &m.BaseModel
		}},
		{"schedule", func() *BaseModel {
			m := &Schedule{}
			return &m.BaseModel
		}},
		{"event", func() *BaseModel {
			m := &Event{}
			return &m.BaseModel
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := tc.model()
			require.NoError(t, model.BeforeCreate(nil))
			require.NotEmpty(t, model.ID)
		})
	}
}

func TestTeamAdminCodeNeverSerialised(t *testing.T) {
	payload, err := json.Marshal(Team{Code: "ABCD", Name: "Robotics", AdminCode: "secret1"})
	require.NoError(t, err)
	require.NotContains(t, string(payload), "secret1")
	require.Contains(t, string(payload), `"code":"ABCD"`)
}

func TestMemberPalette(t *testing.T) {
	require.Len(t, MemberColors, 12)
	require.True(t, IsMemberColor("rose"))
	require.False(t, IsMemberColor("Blue"))
	require.Equal(t, "blue", Member{Color: "magenta"}.DisplayColor())
	require.Equal(t, "teal", Member{Color: "teal"}.DisplayColor())
}

func TestEventIsAllDay(t *testing.T) {
	start := "09:00"
	empty := ""
	require.True(t, Event{}.IsAllDay())
	require.True(t, Event{StartTime: &empty, EndTime: &empty}.IsAllDay())
	require.False(t, Event{StartTime: &start}.IsAllDay())
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.False(t, CacheEntry{}.Expired(now))
	require.True(t, CacheEntry{ExpiresAt: now}.Expired(now))
	require.False(t, CacheEntry{ExpiresAt: now.Add(time.Second)}.Expired(now))
}
