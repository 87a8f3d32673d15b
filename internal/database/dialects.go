package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqliteMemoryDSN = "file::memory:?cache=shared&_foreign_keys=1"

// dialect describes how teamcal reaches one database engine.
type dialect struct {
	name      string
	aliases   []string
	dsn       func(Config) (string, error)
	connector func(string) gorm.Dialector
	afterOpen func(*gorm.DB) error
}

var dialects = []dialect{
	{
		name:      "sqlite",
		aliases:   []string{"sqlite3"},
		dsn:       sqliteDSN,
		connector: sqlite.Open,
		afterOpen: enforceForeignKeys,
	},
	{
		name:      "postgres",
		aliases:   []string{"postgresql", "pg"},
		dsn:       postgresDSN,
		connector: postgres.Open,
	},
	{
		name:      "mysql",
		aliases:   []string{"mariadb"},
		dsn:       mysqlDSN,
		connector: mysql.Open,
	},
}

func lookupDialect(driver string) (dialect, bool) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = "sqlite"
	}
	for _, d := range dialects {
		if d.name == driver {
			return d, true
		}
		for _, alias := range d.aliases {
			if alias == driver {
				return d, true
			}
		}
	}
	return dialect{}, false
}

func (d dialect) open(cfg Config) (*gorm.DB, error) {
	dsn, err := d.dsn(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d.connector(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	if d.afterOpen != nil {
		if err := d.afterOpen(db); err != nil {
			_ = Close(db)
			return nil, err
		}
	}
	return db, nil
}

func sqliteDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		return sqliteMemoryDSN, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	return "file:" + filepath.ToSlash(path) + "?" + joinOptions(map[string]string{
		"_foreign_keys": "1",
		"_journal_mode": "WAL",
		"_busy_timeout": "5000",
	}, cfg.Options, "=", "&"), nil
}

func postgresDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("postgres configuration requires user and database name")
	}

	defaults := map[string]string{
		"host":             valueOr(cfg.Host, "localhost"),
		"port":             fmt.Sprint(portOr(cfg.Port, 5432)),
		"user":             cfg.User,
		"dbname":           cfg.Name,
		"sslmode":          "disable",
		"TimeZone":         "UTC",
		"application_name": "teamcal",
	}
	if cfg.Password != "" {
		defaults["password"] = cfg.Password
	}
	return joinOptions(defaults, cfg.Options, "=", " "), nil
}

func mysqlDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	account := cfg.User
	if cfg.Password != "" {
		account += ":" + cfg.Password
	}
	options := joinOptions(map[string]string{
		"charset":   "utf8mb4",
		"parseTime": "True",
		"loc":       "UTC",
	}, cfg.Options, "=", "&")
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s", account, valueOr(cfg.Host, "127.0.0.1"), portOr(cfg.Port, 3306), cfg.Name, options), nil
}

// joinOptions merges overrides into defaults and renders them in key order.
func joinOptions(defaults, overrides map[string]string, assign, sep string) string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+assign+merged[key])
	}
	return strings.Join(parts, sep)
}

// enforceForeignKeys turns on SQLite FK checks so team deletes cascade to
// members, schedules and events.
func enforceForeignKeys(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func portOr(port, fallback int) int {
	if port <= 0 {
		return fallback
	}
	return port
}
