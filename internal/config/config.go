package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"mta/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
	Reports    ReportsConfig    `yaml:"reports"`
	Sync       SyncConfig       `yaml:"sync"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	// ReadOnly keys may only call GET endpoints.
	ReadOnly bool `yaml:"read_only"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	// Timezone задаёт календарь, по которому считается "сегодня" для закрытия просроченных бронирований
	Timezone string `yaml:"timezone"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	BookingSpreadSheetID  string `yaml:"bookings_spreadsheet_id"`
	BookingSheetName      string `yaml:"bookings_sheet_name"`
	// RebuildOnStart перезаписывает лист целиком из базы при старте
	RebuildOnStart bool `yaml:"rebuild_on_start"`
}

// Enabled reports whether spreadsheet sync is configured.
func (g GoogleConfig) Enabled() bool {
	return g.GoogleCredentialsFile != "" && g.BookingSpreadSheetID != ""
}

type ReportsConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type SyncConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	BaseDelay    time.Duration `yaml:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Reports.CacheTTL < 0 {
		return errors.New("reports.cache_ttl must not be negative")
	}

	if _, err := c.App.Location(); err != nil {
		return fmt.Errorf("invalid app.timezone: %w", err)
	}

	if c.API.Auth.Enabled {
		seen := make(map[string]bool)
		for _, k := range c.API.Auth.APIKeys {
			if k.Key == "" {
				return fmt.Errorf("api key %q is empty", k.Name)
			}
			if seen[k.Key] {
				return fmt.Errorf("duplicate api key for %q", k.Name)
			}
			seen[k.Key] = true
		}
	}
	return nil
}

// Location resolves the configured timezone, defaulting to UTC.
func (a AppConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(a.Timezone)
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "mta"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.HTTP.ReadTimeout == 0 {
		c.API.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.API.HTTP.WriteTimeout == 0 {
		c.API.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.API.HTTP.ShutdownTimeout == 0 {
		c.API.HTTP.ShutdownTimeout = 5 * time.Second
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Reports.CacheTTL == 0 {
		c.Reports.CacheTTL = models.DefaultReportCacheTTL * time.Second
	}
	if c.Google.BookingSheetName == "" {
		c.Google.BookingSheetName = "Bookings"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}

	if c.Sync.MaxRetries == 0 {
		c.Sync.MaxRetries = 5
	}
	if c.Sync.BaseDelay == 0 {
		c.Sync.BaseDelay = 2 * time.Second
	}
	if c.Sync.MaxDelay == 0 {
		c.Sync.MaxDelay = time.Minute
	}
	if c.Sync.PollInterval == 0 {
		c.Sync.PollInterval = 5 * time.Second
	}
}
