package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSQLitePath         = "Resources/hawaii.sqlite"
	defaultPrecipitationLimit = 2000
	// Last observation in the dataset is 2017-08-23.
	defaultTobsSince = "2016-08-24"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	// PrecipitationLimit caps the rows returned by /api/v1.0/precipitation.
	PrecipitationLimit int
	// TobsSince is the inclusive lower date bound for /api/v1.0/tobs.
	TobsSince string

	// RateLimitRPS of 0 disables the request limiter.
	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	if driver != "sqlite3" {
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3)", driver)
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = defaultSQLitePath
	}

	maxOpenConns, err := intFromEnv("DB_MAX_OPEN_CONNS", 4)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := intFromEnv("DB_MAX_IDLE_CONNS", 4)
	if err != nil {
		return Config{}, err
	}

	connMaxLifetimeStr := strings.TrimSpace(os.Getenv("DB_CONN_MAX_LIFETIME"))
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	precipitationLimit, err := intFromEnv("PRECIPITATION_LIMIT", defaultPrecipitationLimit)
	if err != nil {
		return Config{}, err
	}
	if precipitationLimit <= 0 {
		return Config{}, fmt.Errorf("invalid PRECIPITATION_LIMIT %d (must be > 0)", precipitationLimit)
	}

	tobsSince := strings.TrimSpace(os.Getenv("TOBS_SINCE"))
	if tobsSince == "" {
		tobsSince = defaultTobsSince
	}
	if _, err := time.Parse(time.DateOnly, tobsSince); err != nil || len(tobsSince) != len(time.DateOnly) {
		return Config{}, fmt.Errorf("invalid TOBS_SINCE %q (expected YYYY-MM-DD)", tobsSince)
	}

	rpsStr := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS"))
	if rpsStr == "" {
		rpsStr = "0"
	}
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", rpsStr, err)
	}
	if rps < 0 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q (must be >= 0)", rpsStr)
	}
	burst, err := intFromEnv("RATE_LIMIT_BURST", 20)
	if err != nil {
		return Config{}, err
	}
	if rps > 0 && burst <= 0 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_BURST %d (must be > 0 when RATE_LIMIT_RPS is set)", burst)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		SQLiteDriver:          driver,
		SQLiteDSN:             dsn,
		SQLitePath:            path,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		PrecipitationLimit:    precipitationLimit,
		TobsSince:             tobsSince,
		RateLimitRPS:          rps,
		RateLimitBurst:        burst,
	}, nil
}

func intFromEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
