package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// setBaseEnv gives Load the minimum valid environment. viper state is
// global, so every test resets it first.
func setBaseEnv(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("WAIT_FOR", "")
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("DIAL_TIMEOUT", "")
	t.Setenv("MIGRATE_CMD", "")
	t.Setenv("MIGRATE_SKIP", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "db", cfg.Database.Host)
	require.Equal(t, "5432", cfg.Database.Port)
	require.Equal(t, "db:5432", cfg.Database.Addr())
	require.Equal(t, DefaultPollInterval, cfg.PollInterval)
	require.Equal(t, DefaultDialTimeout, cfg.DialTimeout)
	require.Equal(t, []string{"alembic", "upgrade", "head"}, cfg.MigrateCommand)
	require.False(t, cfg.SkipMigrations)
	require.Empty(t, cfg.Extras)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_MissingHostFailsFast(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_HOST", "")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "DB_HOST")
}

func TestLoad_MissingPortFailsFast(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_PORT", "")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "DB_PORT")
}

func TestLoad_InvalidPort(t *testing.T) {
	for _, port := range []string{"abc", "0", "70000", "-1"} {
		setBaseEnv(t)
		t.Setenv("DB_PORT", port)

		_, err := Load("")
		require.Error(t, err, "port %q should be rejected", port)
	}
}

func TestLoad_WaitForList(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WAIT_FOR", "rabbitmq:5672, redis:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Len(t, cfg.Extras, 2)
	require.Equal(t, "rabbitmq:5672", cfg.Extras[0].Addr())
	require.Equal(t, "redis:6379", cfg.Extras[1].Addr())

	// Gate order: database always first
	endpoints := cfg.Endpoints()
	require.Equal(t, "db:5432", endpoints[0].Addr())
	require.Equal(t, "rabbitmq:5672", endpoints[1].Addr())
}

func TestLoad_InvalidWaitFor(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WAIT_FOR", "no-port-here")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "WAIT_FOR")
}

func TestLoad_PollIntervalOverride(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("POLL_INTERVAL", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cfg.PollInterval)
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("POLL_INTERVAL", "soon")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "POLL_INTERVAL")
}

func TestLoad_MigrateCommandOverride(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MIGRATE_CMD", "goose -dir ./migrations up")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, []string{"goose", "-dir", "./migrations", "up"}, cfg.MigrateCommand)
}

func TestLoad_EndpointsFile(t *testing.T) {
	setBaseEnv(t)

	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	content := `poll_interval: "250ms"
endpoints:
  - name: rabbitmq
    host: rabbitmq
    port: "5672"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	require.Len(t, cfg.Extras, 1)
	require.Equal(t, "rabbitmq", cfg.Extras[0].Name)
	require.Equal(t, "rabbitmq:5672", cfg.Extras[0].Addr())
}

func TestLoad_EnvWinsOverFileInterval(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("POLL_INTERVAL", "50ms")

	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`poll_interval: "5s"`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 50*time.Millisecond, cfg.PollInterval)
}

func TestLoad_MissingEndpointsFile(t *testing.T) {
	setBaseEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_EmptyMigrateCommand(t *testing.T) {
	cfg := &Config{
		Database:     Endpoint{Host: "db", Port: "5432"},
		PollInterval: DefaultPollInterval,
		DialTimeout:  DefaultDialTimeout,
	}

	require.Error(t, cfg.Validate())

	cfg.SkipMigrations = true
	require.NoError(t, cfg.Validate())
}

func TestEndpointString(t *testing.T) {
	named := Endpoint{Name: "database", Host: "db", Port: "5432"}
	require.Equal(t, "database", named.String())

	unnamed := Endpoint{Host: "redis", Port: "6379"}
	require.Equal(t, "redis:6379", unnamed.String())
}
