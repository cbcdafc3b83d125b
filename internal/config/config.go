package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"example.com/todos-api/internal/db"
)

type Config struct {
	HTTPAddr string `toml:"http_addr"`

	StoreDriver db.Driver `toml:"store_driver"`
	DatabaseURL string    `toml:"database_url"`
	SQLitePath  string    `toml:"sqlite_path"`

	MaxOpenConns    int           `toml:"db_max_open"`
	MaxIdleConns    int           `toml:"db_max_idle"`
	ConnMaxLifetime time.Duration `toml:"db_conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `toml:"db_conn_max_idle_time"`

	LogLevel string `toml:"log_level"`
	LogJSON  bool   `toml:"log_json"`

	InfoHeader      string        `toml:"info_header"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

func defaults() Config {
	return Config{
		HTTPAddr:        ":4567",
		StoreDriver:     db.DriverSQLite,
		SQLitePath:      "todos.db",
		MaxOpenConns:    20,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		LogLevel:        "info",
		InfoHeader:      "Bish bosh bash",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads configuration from, in rising priority: built-in defaults,
// the TOML file named by TODOS_CONFIG, a local .env file, and the process
// environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("TODOS_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SQLitePath = getenv("SQLITE_PATH", cfg.SQLitePath)
	cfg.MaxOpenConns = getenvInt("DB_MAX_OPEN", cfg.MaxOpenConns)
	cfg.MaxIdleConns = getenvInt("DB_MAX_IDLE", cfg.MaxIdleConns)
	cfg.ConnMaxLifetime = getenvDuration("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime)
	cfg.ConnMaxIdleTime = getenvDuration("DB_CONN_MAX_IDLE_TIME", cfg.ConnMaxIdleTime)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.InfoHeader = getenv("INFO_HEADER", cfg.InfoHeader)
	cfg.ShutdownTimeout = getenvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogJSON = strings.EqualFold(v, "json")
	}

	driver, err := db.ParseDriver(getenv("STORE_DRIVER", string(cfg.StoreDriver)))
	if err != nil {
		return Config{}, err
	}
	cfg.StoreDriver = driver
	if cfg.StoreDriver == db.DriverPostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for the %s store", cfg.StoreDriver)
	}

	return cfg, nil
}

// DSN returns the connection string for the configured SQL driver.
func (c Config) DSN() string {
	if c.StoreDriver == db.DriverPostgres {
		return c.DatabaseURL
	}
	return c.SQLitePath
}

func (c Config) Pool() db.Pool {
	return db.Pool{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
