package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Booking   BookingConfig   `yaml:"booking"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	HTTPPort int    `yaml:"http_port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"ssl_mode"`
	MaxOpenConns   int    `yaml:"max_open_conns"`
	MaxIdleConns   int    `yaml:"max_idle_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	Issuer            string `yaml:"issuer"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// StorageConfig contains handover photo storage settings
type StorageConfig struct {
	Type               string   `yaml:"type"`       // "mock" only for now
	UploadDir          string   `yaml:"upload_dir"` // For mock storage
	BaseURL            string   `yaml:"base_url"`   // Server base URL for mock URLs
	MaxFileSize        int64    `yaml:"max_file_size_mb"`
	AllowedTypes       []string `yaml:"allowed_types"`
	UploadURLExpiryMin int      `yaml:"upload_url_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format     string `yaml:"format"` // "json" or "text"
	File       string `yaml:"file"`   // optional, rotated with lumberjack
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// PricingConfig contains the fallbacks used when a company has no own setting
type PricingConfig struct {
	DefaultTaxRate       string `yaml:"default_tax_rate"`
	DefaultBookingPrefix string `yaml:"default_booking_prefix"`
}

// BookingConfig contains booking lifecycle housekeeping settings
type BookingConfig struct {
	IncompleteGraceMinutes int `yaml:"incomplete_grace_minutes"`
	PendingExpiryHours     int `yaml:"pending_expiry_hours"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReconcileIncompleteBookings string `yaml:"reconcile_incomplete_bookings"`
	ExpirePendingBookings       string `yaml:"expire_pending_bookings"`
}

// Load reads configuration from a YAML file. A .env file next to the
// process, when present, is loaded first so its values act as overrides.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load(".env")

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
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
		c.Database.Port = cast.ToInt(val)
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
	if val := os.Getenv("DB_MIGRATE_ON_START"); val != "" {
		c.Database.MigrateOnStart = cast.ToBool(val)
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		c.Server.HTTPPort = cast.ToInt(val)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		c.Server.GRPCPort = cast.ToInt(val)
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		c.Log.File = val
	}

	// Pricing
	if val := os.Getenv("DEFAULT_TAX_RATE"); val != "" {
		c.Pricing.DefaultTaxRate = val
	}

	// Booking
	if val := os.Getenv("BOOKING_INCOMPLETE_GRACE_MINUTES"); val != "" {
		c.Booking.IncompleteGraceMinutes = cast.ToInt(val)
	}
	if val := os.Getenv("BOOKING_PENDING_EXPIRY_HOURS"); val != "" {
		c.Booking.PendingExpiryHours = cast.ToInt(val)
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.HTTPPort == c.Server.GRPCPort {
		return fmt.Errorf("http and grpc ports must differ")
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "fleetrent"
	}

	// Storage validation
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "mock"
	}
	if c.Storage.UploadURLExpiryMin == 0 {
		c.Storage.UploadURLExpiryMin = 15
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png"}
	}

	// Pricing defaults
	if c.Pricing.DefaultTaxRate == "" {
		c.Pricing.DefaultTaxRate = "0.21"
	}
	rate, err := decimal.NewFromString(c.Pricing.DefaultTaxRate)
	if err != nil {
		return fmt.Errorf("invalid default tax rate %q: %w", c.Pricing.DefaultTaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("default tax rate must be in [0, 1): %s", rate)
	}
	if c.Pricing.DefaultBookingPrefix == "" {
		c.Pricing.DefaultBookingPrefix = "BK"
	}
	c.Pricing.DefaultBookingPrefix = strings.ToUpper(c.Pricing.DefaultBookingPrefix)

	// Booking defaults
	if c.Booking.IncompleteGraceMinutes <= 0 {
		c.Booking.IncompleteGraceMinutes = 10
	}
	if c.Booking.PendingExpiryHours <= 0 {
		c.Booking.PendingExpiryHours = 48
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileIncompleteBookings == "" {
		c.Scheduler.ReconcileIncompleteBookings = "0 */5 * * * *" // Every 5 minutes
	}
	if c.Scheduler.ExpirePendingBookings == "" {
		c.Scheduler.ExpirePendingBookings = "0 0 * * * *" // Hourly
	}

	return nil
}

// TaxRate returns the validated default tax rate.
func (c *Config) TaxRate() decimal.Decimal {
	return decimal.RequireFromString(c.Pricing.DefaultTaxRate)
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

// GetHTTPAddress returns the HTTP listen address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GetGRPCAddress returns the gRPC listen address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
