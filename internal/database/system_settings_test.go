package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/models"
)

func TestGetAndUpsertSystemSetting(t *testing.T) {
	db := openSystemSettingTestDB(t)

	value, err := GetSystemSetting(context.Background(), db, "missing")
	require.NoError(t, err)
	require.Equal(t, "", value)

	require.NoError(t, UpsertSystemSetting(context.Background(), db, "sample", "value1"))

	retrieved, err := GetSystemSetting(context.Background(), db, "sample")
	require.NoError(t, err)
	require.Equal(t, "value1", retrieved)

	require.NoError(t, UpsertSystemSetting(context.Background(), db, "sample", "value2"))

	retrieved, err = GetSystemSetting(context.Background(), db, "sample")
	require.NoError(t, err)
	require.Equal(t, "value2", retrieved)

	require.Error(t, UpsertSystemSetting(context.Background(), db, "  ", "value"))
}

func TestResolveSessionSecretPersistsGeneratedValue(t *testing.T) {
	db := openSystemSettingTestDB(t)
	ctx := context.Background()

	first, err := ResolveSessionSecret(ctx, db, "generated-one", true)
	require.NoError(t, err)
	require.Equal(t, "generated-one", first)

	second, err := ResolveSessionSecret(ctx, db, "generated-two", true)
	require.NoError(t, err)
	require.Equal(t, "generated-one", second, "a stored secret survives restarts")
}

func TestResolveSessionSecretPrefersConfiguredValue(t *testing.T) {
	db := openSystemSettingTestDB(t)
	ctx := context.Background()

	require.NoError(t, UpsertSystemSetting(ctx, db, AdminSessionSecretSetting, "stored"))

	secret, err := ResolveSessionSecret(ctx, db, "configured", false)
	require.NoError(t, err)
	require.Equal(t, "configured", secret)

	_, err = ResolveSessionSecret(ctx, db, "", false)
	require.Error(t, err)
}

func openSystemSettingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.SystemSetting{}))
	return db
}
