package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/inflationfighter/price-service/internal/optimizer"
	"github.com/inflationfighter/price-service/internal/routing"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	CORS      CORSConfig       `mapstructure:"cors"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Routing   routing.Config   `mapstructure:"routing"`
	Optimizer optimizer.Config `mapstructure:"optimizer"`
	Search    SearchConfig     `mapstructure:"search"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
	Internal  InternalConfig   `mapstructure:"internal"`
	Jobs      JobsConfig       `mapstructure:"jobs"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RateLimitConfig holds per-client request limits for the public API
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// SearchConfig holds Elasticsearch settings. Search falls back to the
// database when disabled or unreachable.
type SearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
}

// TelemetryConfig holds OpenTelemetry exporter settings
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
}

// InternalConfig holds settings for the /internal routes
type InternalConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// JobsConfig holds background job settings
type JobsConfig struct {
	DealCleanupEnabled  bool          `mapstructure:"deal_cleanup_enabled"`
	DealCleanupInterval time.Duration `mapstructure:"deal_cleanup_interval"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		// .env is optional
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix("PRICE_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate checks the sections that have constraints.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return optimizer.ErrInvalidConfig{Field: "server.port", Reason: "must be between 1 and 65535"}
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	if c.Routing.Timeout <= 0 {
		return optimizer.ErrInvalidConfig{Field: "routing.timeout", Reason: "must be positive"}
	}
	if c.Search.Enabled && len(c.Search.Addresses) == 0 {
		return optimizer.ErrInvalidConfig{Field: "search.addresses", Reason: "required when search is enabled"}
	}
	return nil
}

// loadEnvFile loads the first .env file found by parsing KEY=VALUE lines
// into the process environment.
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables that are
// not already set.
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), "\"'")
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds the conventional unprefixed variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", "DATABASE_URL")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")

	v.BindEnv("logging.level", "LOG_LEVEL")

	v.BindEnv("routing.api_key", "ORS_API_KEY")
	v.BindEnv("routing.base_url", "ORS_BASE_URL")

	v.BindEnv("search.addresses", "ELASTICSEARCH_URL")
	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("internal.api_key", "INTERNAL_API_KEY")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	// Database defaults
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	// Public API rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Routing provider defaults
	r := routing.DefaultConfig()
	v.SetDefault("routing.base_url", r.BaseURL)
	v.SetDefault("routing.api_key", "")
	v.SetDefault("routing.profile", r.Profile)
	v.SetDefault("routing.timeout", r.Timeout)
	v.SetDefault("routing.requests_per_second", r.RequestsPerSecond)
	v.SetDefault("routing.burst", r.Burst)

	// Optimizer defaults
	o := optimizer.Defaults()
	v.SetDefault("optimizer.max_basket_items", o.MaxBasketItems)
	v.SetDefault("optimizer.provider_timeout", o.ProviderTimeout)
	v.SetDefault("optimizer.km_per_degree", o.KmPerDegree)
	v.SetDefault("optimizer.road_curvature", o.RoadCurvature)
	v.SetDefault("optimizer.average_speed_kmh", o.AverageSpeedKmh)
	v.SetDefault("optimizer.default_gas_price_per_liter", o.DefaultGasPricePerLiter)
	v.SetDefault("optimizer.default_fuel_efficiency", o.DefaultFuelEfficiency)
	v.SetDefault("optimizer.default_time_value_per_hour", o.DefaultTimeValuePerHour)
	v.SetDefault("optimizer.default_time_per_store_minutes", o.DefaultTimePerStoreMinutes)
	v.SetDefault("optimizer.circuit_breaker.max_failures", o.CircuitBreaker.MaxFailures)
	v.SetDefault("optimizer.circuit_breaker.reset_timeout", o.CircuitBreaker.ResetTimeout)
	v.SetDefault("optimizer.circuit_breaker.half_open_max_calls", o.CircuitBreaker.HalfOpenMaxCalls)

	// Search defaults
	v.SetDefault("search.enabled", false)
	v.SetDefault("search.addresses", []string{})
	v.SetDefault("search.index", "categories")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "price-service")
	v.SetDefault("telemetry.environment", "")

	v.SetDefault("internal.api_key", "")

	v.SetDefault("jobs.deal_cleanup_enabled", true)
	v.SetDefault("jobs.deal_cleanup_interval", time.Hour)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
