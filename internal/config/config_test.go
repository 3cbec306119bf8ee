package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/tasks", cfg.API.TasksEndpoint())
	assert.Equal(t, "http://localhost:8080/notes", cfg.API.NotesEndpoint())
	assert.Equal(t, "http://localhost:8080/events", cfg.API.EventsEndpoint())
	assert.Equal(t, time.Duration(0), cfg.Sync.Timeout)
	assert.Equal(t, OrderingIssue, cfg.Sync.Ordering)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.Security.RateLimitWindow)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "organizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://functions.example.com/
  notes_url: https://notes.example.com/v2
sync:
  timeout: 5s
  ordering: resolved
logger:
  level: debug
`), 0644))

	t.Setenv("ORGANIZER_SERVER_PORT", "9191")
	t.Setenv("DATABASE_URL", "postgres://localhost/organizer")
	t.Setenv("ORGANIZER_DATABASE_DRIVER", "postgres")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://functions.example.com/tasks", cfg.API.TasksEndpoint())
	assert.Equal(t, "https://notes.example.com/v2", cfg.API.NotesEndpoint())
	assert.Equal(t, 5*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, OrderingResolved, cfg.Sync.Ordering)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/organizer", cfg.Database.DSN)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			API:      APIConfig{BaseURL: "http://localhost:8080", TasksPath: "/tasks", NotesPath: "/notes", EventsPath: "/events"},
			Sync:     SyncConfig{Ordering: OrderingIssue},
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite3"},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }},
		{"ordering", func(c *Config) { c.Sync.Ordering = "random" }},
		{"timeout", func(c *Config) { c.Sync.Timeout = -time.Second }},
		{"endpoint", func(c *Config) { c.API.TasksURL = "ftp://tasks" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
