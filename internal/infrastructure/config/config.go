package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Log        LogConfig
	Tax        TaxConfig
	Plan       PlanConfig
	Compliance ComplianceConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
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

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds rate schedule cache settings
type CacheConfig struct {
	Backend     string // "redis" or "memory"
	ScheduleTTL time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// JurisdictionConfig holds the rate schedule for one tax jurisdiction.
// Rates are percentages as decimal strings ("20", "5.5").
type JurisdictionConfig struct {
	Code         string
	Currency     string
	StandardRate string
	ReducedRate  string
}

// TaxConfig holds tax calculation settings
type TaxConfig struct {
	Jurisdictions []JurisdictionConfig
}

// TierConfig holds the ceilings and features for one subscription tier.
// A limit of -1 means unlimited.
type TierConfig struct {
	Name         string
	MaxUsers     int64
	MaxRecords   int64
	MaxCustomers int64
	Features     []string
}

// CountryPolicyConfig pins the plan-code prefix and currency for one
// protected country.
type CountryPolicyConfig struct {
	Country  string
	Prefix   string
	Currency string
}

// PlanConfig holds subscription tier and plan-code namespace settings
type PlanConfig struct {
	Tiers     []TierConfig
	Countries []CountryPolicyConfig
}

// ComplianceConfig holds data-protection workflow settings. The DSAR
// response deadline is regulatory and deliberately not configurable.
type ComplianceConfig struct {
	RetentionReviewDays int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with BIZSUITE_ prefix (e.g., BIZSUITE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("BIZSUITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
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
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Backend:     v.GetString("cache.backend"),
			ScheduleTTL: v.GetDuration("cache.schedule_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Compliance: ComplianceConfig{
			RetentionReviewDays: v.GetInt("compliance.retention_review_days"),
		},
	}

	if err := v.UnmarshalKey("tax.jurisdictions", &cfg.Tax.Jurisdictions); err != nil {
		return nil, fmt.Errorf("error parsing tax jurisdictions: %w", err)
	}
	if err := v.UnmarshalKey("plan.tiers", &cfg.Plan.Tiers); err != nil {
		return nil, fmt.Errorf("error parsing plan tiers: %w", err)
	}
	if err := v.UnmarshalKey("plan.countries", &cfg.Plan.Countries); err != nil {
		return nil, fmt.Errorf("error parsing plan countries: %w", err)
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
		cfg.App.Name = "bizsuite-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
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
		cfg.Database.DBName = "bizsuite"
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
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.ScheduleTTL == 0 {
		cfg.Cache.ScheduleTTL = 15 * time.Minute
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
	if len(cfg.Tax.Jurisdictions) == 0 {
		cfg.Tax.Jurisdictions = []JurisdictionConfig{
			{Code: "GB", Currency: "GBP", StandardRate: "20", ReducedRate: "5"},
		}
	}
	if len(cfg.Plan.Countries) == 0 {
		cfg.Plan.Countries = []CountryPolicyConfig{
			{Country: "UK", Prefix: "UK-", Currency: "GBP"},
			{Country: "IE", Prefix: "IE-", Currency: "EUR"},
			{Country: "AU", Prefix: "AU-", Currency: "AUD"},
			{Country: "NZ", Prefix: "NZ-", Currency: "NZD"},
		}
	}
	if cfg.Compliance.RetentionReviewDays == 0 {
		cfg.Compliance.RetentionReviewDays = 365
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

	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got %q", c.Cache.Backend)
	}

	for _, j := range c.Tax.Jurisdictions {
		if j.Code == "" || j.Currency == "" {
			return fmt.Errorf("tax jurisdiction entries require a code and a currency")
		}
		if j.StandardRate == "" || j.ReducedRate == "" {
			return fmt.Errorf("tax jurisdiction %s requires standard and reduced rates", j.Code)
		}
	}

	for _, p := range c.Plan.Countries {
		if p.Country == "" || p.Prefix == "" || p.Currency == "" {
			return fmt.Errorf("plan country policies require country, prefix, and currency")
		}
	}

	if c.Compliance.RetentionReviewDays < 0 {
		return fmt.Errorf("compliance.retention_review_days cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
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
