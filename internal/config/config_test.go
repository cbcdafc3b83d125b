package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/todos-api/internal/db"
)

func TestLoad_Defaults(t *testing.T) {
	// Ensure clean env for this test.
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":4567", cfg.HTTPAddr)
	require.Equal(t, db.DriverSQLite, cfg.StoreDriver)
	require.Equal(t, "todos.db", cfg.DSN())
	require.Equal(t, 20, cfg.MaxOpenConns)
	require.Equal(t, 10, cfg.MaxIdleConns)
	require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	require.Equal(t, 5*time.Minute, cfg.ConnMaxIdleTime)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.LogJSON)
	require.Equal(t, "Bish bosh bash", cfg.InfoHeader)
}

func TestLoad_OverridesAndInvalidValues(t *testing.T) {
	t.Cleanup(os.Clearenv)

	t.Run("valid overrides", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("STORE_DRIVER", "postgres")
		os.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")
		os.Setenv("DB_MAX_OPEN", "5")
		os.Setenv("DB_MAX_IDLE", "2")
		os.Setenv("DB_CONN_MAX_LIFETIME", "1m")
		os.Setenv("DB_CONN_MAX_IDLE_TIME", "10s")
		os.Setenv("HTTP_ADDR", ":9999")
		os.Setenv("LOG_FORMAT", "JSON")
		os.Setenv("INFO_HEADER", "hello")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, db.DriverPostgres, cfg.StoreDriver)
		require.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.DSN())
		require.Equal(t, db.Pool{
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Minute,
			ConnMaxIdleTime: 10 * time.Second,
		}, cfg.Pool())
		require.Equal(t, ":9999", cfg.HTTPAddr)
		require.True(t, cfg.LogJSON)
		require.Equal(t, "hello", cfg.InfoHeader)
	})

	t.Run("invalid numbers fall back to defaults", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DB_MAX_OPEN", "abc")
		os.Setenv("DB_MAX_IDLE", "xyz")
		os.Setenv("DB_CONN_MAX_LIFETIME", "bad")
		os.Setenv("DB_CONN_MAX_IDLE_TIME", "bad")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 20, cfg.MaxOpenConns)
		require.Equal(t, 10, cfg.MaxIdleConns)
		require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
		require.Equal(t, 5*time.Minute, cfg.ConnMaxIdleTime)
	})

	t.Run("postgres needs a url", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("STORE_DRIVER", "postgres")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("STORE_DRIVER", "mongo")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoad_TOMLFileBelowEnvironment(t *testing.T) {
	t.Cleanup(os.Clearenv)
	os.Clearenv()

	path := filepath.Join(t.TempDir(), "todos.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr = ":7000"
store_driver = "memory"
sqlite_path = "/var/lib/todos.db"
db_max_open = 3
shutdown_timeout = "3s"
log_level = "debug"
`), 0o600))

	os.Setenv("TODOS_CONFIG", path)
	os.Setenv("HTTP_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7001", cfg.HTTPAddr)
	require.Equal(t, db.DriverMemory, cfg.StoreDriver)
	require.Equal(t, "/var/lib/todos.db", cfg.SQLitePath)
	require.Equal(t, 3, cfg.MaxOpenConns)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, "debug", cfg.LogLevel)

	os.Setenv("TODOS_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	_, err = Load()
	require.Error(t, err)
}
