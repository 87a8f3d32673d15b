package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/teamcal/internal/models"
)

// AdminSessionSecretSetting stores the generated admin session signing secret so issued
// cookies stay valid across restarts.
const AdminSessionSecretSetting = "admin.session_secret"

// GetSystemSetting retrieves a system setting by key. Returns an empty string when not found.
func GetSystemSetting(ctx context.Context, db *gorm.DB, key string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("system settings: db is nil")
	}

	var setting models.SystemSetting
	err := db.WithContext(ctx).Where(&models.SystemSetting{Key: key}).Take(&setting).Error
	if err == nil {
		return setting.Value, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return "", fmt.Errorf("system settings: get %q: %w", key, err)
}

// UpsertSystemSetting stores or updates a system setting value.
func UpsertSystemSetting(ctx context.Context, db *gorm.DB, key, value string) error {
	if db == nil {
		return fmt.Errorf("system settings: db is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("system settings: key is required")
	}

	record := models.SystemSetting{Key: key, Value: value}
	if err := db.WithContext(ctx).
		Where(&models.SystemSetting{Key: key}).
		Assign(models.SystemSetting{Value: value}).
		FirstOrCreate(&record).Error; err != nil {
		return fmt.Errorf("system settings: upsert %q: %w", key, err)
	}

	return nil
}

// ResolveSessionSecret returns the admin session secret to sign cookies with. A secret
// stored by an earlier run wins over a freshly generated one; a configured secret always
// wins and is not persisted.
func ResolveSessionSecret(ctx context.Context, db *gorm.DB, secret string, generated bool) (string, error) {
	secret = strings.TrimSpace(secret)
	if !generated {
		if secret == "" {
			return "", fmt.Errorf("system settings: session secret is empty")
		}
		return secret, nil
	}

	stored, err := GetSystemSetting(ctx, db, AdminSessionSecretSetting)
	if err != nil {
		return "", err
	}
	if stored = strings.TrimSpace(stored); stored != "" {
		return stored, nil
	}

	if secret == "" {
		return "", fmt.Errorf("system settings: generated session secret is empty")
	}
	if err := UpsertSystemSetting(ctx, db, AdminSessionSecretSetting, secret); err != nil {
		return "", err
	}
	return secret, nil
}
