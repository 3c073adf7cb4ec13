package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"climate-server/internal/config"
)

// DriverName is the only database/sql driver the read-only connector wraps.
const DriverName = "sqlite3"

// Open opens the observation dataset read-only. The file must already exist;
// nothing here creates or migrates schema.
func Open(cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	if cfg.SQLiteDriver != "" && cfg.SQLiteDriver != DriverName {
		return nil, fmt.Errorf("db driver %q not supported (want %s)", cfg.SQLiteDriver, DriverName)
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	connector, err := NewReadOnlyConnector(dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("db connector: %w", err)
	}
	db := sql.OpenDB(connector)

	if cfg.SQLiteMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.SQLiteMaxOpenConns)
	}
	if cfg.SQLiteMaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.SQLiteMaxIdleConns)
	}
	if cfg.SQLiteConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.SQLiteConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.SQLiteDSN != "" {
		return cfg.SQLiteDSN, nil
	}

	path := cfg.SQLitePath
	if path == "" {
		return "", fmt.Errorf("sqlite path is empty")
	}
	// mode=ro would fail later with an opaque "unable to open database file".
	if !strings.HasPrefix(path, "file:") {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("sqlite dataset %s: %w", path, err)
		}
	}

	params := []string{
		"mode=ro",
		"_query_only=true",
		"_busy_timeout=5000",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
