package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Carrier   CarrierConfig   `yaml:"carrier"`
	Buyback   BuybackConfig   `yaml:"buyback"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains the worker's ops HTTP settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SendGridConfig contains notification delivery settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// CarrierConfig contains label service settings
type CarrierConfig struct {
	Type           string `yaml:"type"` // "mock" is the only backend wired today
	Name           string `yaml:"name"`
	LabelCostCents int64  `yaml:"label_cost_cents"`
}

// BuybackConfig contains offer and lifecycle settings
type BuybackConfig struct {
	QuoteLockWindowDays     int32 `yaml:"quote_lock_window_days"`
	DecisionWindowDays      int32 `yaml:"decision_window_days"`
	ExternalTimeoutSeconds  int32 `yaml:"external_timeout_seconds"`
	OutboxDispatchBatchSize int32 `yaml:"outbox_dispatch_batch_size"`
}

// SchedulerConfig contains cron schedule settings (with seconds field)
type SchedulerConfig struct {
	ExpireQuotes          string `yaml:"expire_quotes"`
	ExpireDecisionWindows string `yaml:"expire_decision_windows"`
	RefreshTracking       string `yaml:"refresh_tracking"`
	DispatchOutbox        string `yaml:"dispatch_outbox"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from_email is required")
	}

	// Carrier defaults
	if c.Carrier.Type == "" {
		c.Carrier.Type = "mock"
	}
	if c.Carrier.Name == "" {
		c.Carrier.Name = "usps"
	}
	if c.Carrier.LabelCostCents == 0 {
		c.Carrier.LabelCostCents = 795
	}

	// Buyback defaults
	if c.Buyback.QuoteLockWindowDays == 0 {
		c.Buyback.QuoteLockWindowDays = 14
	}
	if c.Buyback.DecisionWindowDays == 0 {
		c.Buyback.DecisionWindowDays = 3
	}
	if c.Buyback.ExternalTimeoutSeconds == 0 {
		c.Buyback.ExternalTimeoutSeconds = 10
	}
	if c.Buyback.OutboxDispatchBatchSize == 0 {
		c.Buyback.OutboxDispatchBatchSize = 50
	}

	// Scheduler defaults
	if c.Scheduler.ExpireQuotes == "" {
		c.Scheduler.ExpireQuotes = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.ExpireDecisionWindows == "" {
		c.Scheduler.ExpireDecisionWindows = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.RefreshTracking == "" {
		c.Scheduler.RefreshTracking = "0 */30 * * * *" // every 30 minutes
	}
	if c.Scheduler.DispatchOutbox == "" {
		c.Scheduler.DispatchOutbox = "0 * * * * *" // every minute
	}

	return nil
}

// ExternalTimeout returns the timeout applied to carrier and notification calls.
func (c *Config) ExternalTimeout() time.Duration {
	return time.Duration(c.Buyback.ExternalTimeoutSeconds) * time.Second
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the ops HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
