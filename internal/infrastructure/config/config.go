package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/storefront/backend/internal/domain/feedsync"
)

// EnvPrefix is the prefix of environment variable overrides
const EnvPrefix = "STOREFRONT"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	HTTP      HTTPConfig
	FeedSync  FeedSyncConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// FeedSyncConfig holds catalog feed synchronization settings
type FeedSyncConfig struct {
	Enabled       bool
	CronSchedule  string
	Timezone      string // IANA name; empty or "Local" uses the process zone
	InitialDelay  time.Duration
	BusyStartHour int
	BusyEndHour   int // inclusive
	BusyDelay     time.Duration
	FetchTimeout  time.Duration
	UserAgent     string
	MaxBodyBytes  int64
	Sources       []FeedSourceConfig
}

// FeedSourceConfig is one entry of the feed_sync.sources array
type FeedSourceConfig struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Tenant   string `mapstructure:"tenant"` // "all" or a tenant UUID
	Format   string `mapstructure:"format"`
	Priority int    `mapstructure:"priority"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable tracing
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool // Bridge zap records to the collector
	DBTraceEnabled    bool // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool // Include query variables in spans (dev only)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_DATABASE_PASSWORD)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	return build(v)
}

// LoadFile loads configuration from an explicit TOML file, still honouring
// environment overrides. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return build(v)
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

func build(v *viper.Viper) (*Config, error) {
	// Enable environment variable override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var sources []FeedSourceConfig
	if err := v.UnmarshalKey("feed_sync.sources", &sources); err != nil {
		return nil, fmt.Errorf("error decoding feed_sync.sources: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		FeedSync: FeedSyncConfig{
			Enabled:       v.GetBool("feed_sync.enabled"),
			CronSchedule:  v.GetString("feed_sync.cron_schedule"),
			Timezone:      v.GetString("feed_sync.timezone"),
			InitialDelay:  v.GetDuration("feed_sync.initial_delay"),
			BusyStartHour: v.GetInt("feed_sync.busy_start_hour"),
			BusyEndHour:   v.GetInt("feed_sync.busy_end_hour"),
			BusyDelay:     v.GetDuration("feed_sync.busy_delay"),
			FetchTimeout:  v.GetDuration("feed_sync.fetch_timeout"),
			UserAgent:     v.GetString("feed_sync.user_agent"),
			MaxBodyBytes:  v.GetInt64("feed_sync.max_body_bytes"),
			Sources:       sources,
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		},
	}

	// Busy window hours are legitimately zero, so they are only defaulted
	// when the keys are absent.
	if !v.IsSet("feed_sync.busy_start_hour") {
		cfg.FeedSync.BusyStartHour = 9
	}
	if !v.IsSet("feed_sync.busy_end_hour") {
		cfg.FeedSync.BusyEndHour = 18
	}
	if !v.IsSet("feed_sync.enabled") {
		cfg.FeedSync.Enabled = true
	}
	if !v.IsSet("feed_sync.initial_delay") {
		cfg.FeedSync.InitialDelay = 2 * time.Minute
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// A manual trigger answers only after the run completes
		cfg.HTTP.WriteTimeout = 10 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.FeedSync.CronSchedule == "" {
		cfg.FeedSync.CronSchedule = "0 */4 * * *"
	}
	if cfg.FeedSync.BusyDelay == 0 {
		cfg.FeedSync.BusyDelay = 30 * time.Minute
	}
	if cfg.FeedSync.FetchTimeout == 0 {
		cfg.FeedSync.FetchTimeout = 30 * time.Second
	}
	if cfg.FeedSync.UserAgent == "" {
		cfg.FeedSync.UserAgent = "Storefront-Catalog-Sync/1.0"
	}
	if cfg.FeedSync.MaxBodyBytes == 0 {
		cfg.FeedSync.MaxBodyBytes = 50 << 20 // 50MB
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	feed := c.FeedSync
	if feed.BusyStartHour < 0 || feed.BusyStartHour > 23 {
		return fmt.Errorf("feed_sync.busy_start_hour must be between 0 and 23, got %d", feed.BusyStartHour)
	}
	if feed.BusyEndHour < 0 || feed.BusyEndHour > 23 {
		return fmt.Errorf("feed_sync.busy_end_hour must be between 0 and 23, got %d", feed.BusyEndHour)
	}
	if feed.InitialDelay < 0 || feed.BusyDelay < 0 {
		return fmt.Errorf("feed_sync delays cannot be negative")
	}
	if feed.FetchTimeout < 0 {
		return fmt.Errorf("feed_sync.fetch_timeout cannot be negative")
	}
	if feed.MaxBodyBytes < 0 {
		return fmt.Errorf("feed_sync.max_body_bytes cannot be negative")
	}
	if _, err := feed.Location(); err != nil {
		return err
	}
	if _, err := feed.FeedSources(); err != nil {
		return err
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// Location resolves the configured timezone
func (c FeedSyncConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("feed_sync.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// FeedSources converts and validates the configured sources.
// Duplicate names are rejected since logs and metrics key on them.
func (c FeedSyncConfig) FeedSources() ([]feedsync.FeedSource, error) {
	sources := make([]feedsync.FeedSource, 0, len(c.Sources))
	seen := make(map[string]bool, len(c.Sources))
	for i, raw := range c.Sources {
		scope, err := feedsync.ParseTenantScope(raw.Tenant)
		if err != nil {
			return nil, fmt.Errorf("feed_sync.sources[%d]: %w", i, err)
		}
		source := feedsync.FeedSource{
			Name:        strings.TrimSpace(raw.Name),
			URL:         strings.TrimSpace(raw.URL),
			TenantScope: scope,
			Format:      feedsync.Format(strings.ToLower(strings.TrimSpace(raw.Format))),
			Priority:    raw.Priority,
		}
		if err := source.Validate(); err != nil {
			return nil, fmt.Errorf("feed_sync.sources[%d]: %w", i, err)
		}
		if seen[source.Name] {
			return nil, fmt.Errorf("feed_sync.sources[%d]: %w: duplicate name %q", i, feedsync.ErrInvalidSource, source.Name)
		}
		seen[source.Name] = true
		sources = append(sources, source)
	}
	return sources, nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
