package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamcal/internal/models"
)

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	for _, model := range Models() {
		require.True(t, migrator.HasTable(model), "expected table for %T to exist", model)
	}
	require.True(t, migrator.HasIndex(&models.Team{}, "Code"), "expected unique index on team code")
}

func TestAutoMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, AutoMigrate(db))
}

func TestTeamCodeUniqueIndexEnforced(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, db.Create(&models.Team{Code: "ROBOT1", Name: "One", AdminCode: "admin1"}).Error)
	require.Error(t, db.Create(&models.Team{Code: "ROBOT1", Name: "Two", AdminCode: "admin2"}).Error)
}

func TestForeignKeysCascadeOnTeamDelete(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	team := models.Team{Code: "CASCADE", Name: "Cascade", AdminCode: "admin1"}
	require.NoError(t, db.Create(&team).Error)

	member := models.Member{TeamID: team.ID, Nickname: "ana", Color: "teal"}
	require.NoError(t, db.Create(&member).Error)

	require.NoError(t, db.Create(&models.Schedule{
		MemberID:  member.ID,
		Date:      models.MustParseDate("2024-04-01"),
		StartTime: "09:00",
		EndTime:   "10:00",
	}).Error)
	require.NoError(t, db.Create(&models.Event{TeamID: team.ID, Title: "Kickoff", Date: models.MustParseDate("2024-04-02")}).Error)

	require.NoError(t, db.Delete(&models.Team{}, "id = ?", team.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.Member{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Schedule{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Event{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDateColumnRoundTrip(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	team := models.Team{Code: "DATES", Name: "Dates", AdminCode: "admin1"}
	require.NoError(t, db.Create(&team).Error)
	require.NoError(t, db.Create(&models.Event{TeamID: team.ID, Title: "Leap", Date: models.MustParseDate("2024-02-29")}).Error)

	var events []models.Event
	require.NoError(t, db.Where("date BETWEEN ? AND ?", models.MustParseDate("2024-02-01"), models.MustParseDate("2024-02-29")).Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, "2024-02-29", events[0].Date.String())
}
