package app

import (
	"fmt"
	"strings"

	"github.com/charlesng35/teamcal/pkg/crypto"
)

const sessionSecretBytes = 48

// ApplyRuntimeDefaults ensures critical secrets are populated even when no configuration file is supplied.
// It returns a map describing which keys were generated so callers can log the event without exposing values.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	cfg.Admin.SessionSecret = strings.TrimSpace(cfg.Admin.SessionSecret)
	if cfg.Admin.SessionSecret == "" {
		secret, err := crypto.GenerateToken(sessionSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate admin session secret: %w", err)
		}
		cfg.Admin.SessionSecret = secret
		generated["admin.session_secret"] = true
	}

	if cfg.Cache.CalendarTTL < 0 {
		cfg.Cache.CalendarTTL = 0
	}

	return generated, nil
}
