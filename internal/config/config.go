package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// APIConfig locates the three remote collections
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	TasksPath  string `mapstructure:"tasks_path"`
	NotesPath  string `mapstructure:"notes_path"`
	EventsPath string `mapstructure:"events_path"`
	// Full URLs win over base_url + path when set
	TasksURL  string `mapstructure:"tasks_url"`
	NotesURL  string `mapstructure:"notes_url"`
	EventsURL string `mapstructure:"events_url"`
}

// SyncConfig tunes the collection stores
type SyncConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"` // 0 = no timeout
	Ordering string        `mapstructure:"ordering"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Sync orderings
const (
	OrderingIssue    = "issue"
	OrderingResolved = "resolved"
)

// Load reads configuration from defaults, an optional config file, .env and
// the environment. An empty path looks for config.{yaml,json,toml} in the
// user config directory.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ORGANIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.tasks_path", "/tasks")
	v.SetDefault("api.notes_path", "/notes")
	v.SetDefault("api.events_path", "/events")
	v.SetDefault("api.tasks_url", "")
	v.SetDefault("api.notes_url", "")
	v.SetDefault("api.events_url", "")

	// Sync defaults
	v.SetDefault("sync.timeout", "0s")
	v.SetDefault("sync.ordering", OrderingIssue)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// Database defaults
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("api.base_url", "ORGANIZER_API_BASE_URL", "API_BASE_URL")
	v.BindEnv("database.dsn", "ORGANIZER_DATABASE_DSN", "DATABASE_URL")
	v.BindEnv("server.port", "ORGANIZER_SERVER_PORT", "PORT")
	v.BindEnv("logger.level", "ORGANIZER_LOGGER_LEVEL", "LOG_LEVEL")
	v.BindEnv("logger.format", "ORGANIZER_LOGGER_FORMAT", "LOG_FORMAT")
	v.BindEnv("security.cors_allowed_origins", "ORGANIZER_SECURITY_CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("metrics.enabled", "ORGANIZER_METRICS_ENABLED", "ENABLE_METRICS")
}

// Validate checks the loaded values
func (cfg *Config) Validate() error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	switch cfg.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == "postgres" && cfg.Database.DSN == "" {
		return fmt.Errorf("postgres driver requires database.dsn")
	}

	switch cfg.Sync.Ordering {
	case OrderingIssue, OrderingResolved:
	default:
		return fmt.Errorf("sync ordering must be %q or %q", OrderingIssue, OrderingResolved)
	}
	if cfg.Sync.Timeout < 0 {
		return fmt.Errorf("sync timeout cannot be negative")
	}

	if cfg.Security.RateLimitRequests < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}

	for name, u := range map[string]string{"tasks": cfg.API.TasksEndpoint(), "notes": cfg.API.NotesEndpoint(), "events": cfg.API.EventsEndpoint()} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s endpoint %q is not an http(s) URL", name, u)
		}
	}

	return nil
}

func join(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// TasksEndpoint returns the URL of the tasks collection
func (c *APIConfig) TasksEndpoint() string {
	if c.TasksURL != "" {
		return c.TasksURL
	}
	return join(c.BaseURL, c.TasksPath)
}

// NotesEndpoint returns the URL of the notes collection
func (c *APIConfig) NotesEndpoint() string {
	if c.NotesURL != "" {
		return c.NotesURL
	}
	return join(c.BaseURL, c.NotesPath)
}

// EventsEndpoint returns the URL of the events collection
func (c *APIConfig) EventsEndpoint() string {
	if c.EventsURL != "" {
		return c.EventsURL
	}
	return join(c.BaseURL, c.EventsPath)
}

// Address returns host:port for the listener
func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// configDir returns the directory holding config.yaml
func configDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "organizer"), nil
}

// DataDir returns the directory for the default sqlite database, creating it
func DataDir() (string, error) {
	return appDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the directory for log files, creating it
func StateDir() (string, error) {
	return appDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func appDir(env, fallback string) (string, error) {
	dir := os.Getenv(env)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, fallback)
	}

	appDir := filepath.Join(dir, "organizer")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}
	return appDir, nil
}
