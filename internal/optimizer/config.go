package optimizer

import "time"

// Config holds the configuration for the trip optimizer.
// It is loaded from environment variables or a config file.
type Config struct {
	// Validation limits
	MaxBasketItems int `mapstructure:"max_basket_items" env:"MAX_BASKET_ITEMS" default:"100"`

	// Route provider call
	ProviderTimeout time.Duration `mapstructure:"provider_timeout" env:"PROVIDER_TIMEOUT" default:"30s"`

	// Fallback travel estimate (heuristic constants, tuned for a single metro area)
	KmPerDegree     float64 `mapstructure:"km_per_degree" env:"KM_PER_DEGREE" default:"111"`
	RoadCurvature   float64 `mapstructure:"road_curvature" env:"ROAD_CURVATURE" default:"1.3"`
	AverageSpeedKmh float64 `mapstructure:"average_speed_kmh" env:"AVERAGE_SPEED_KMH" default:"40"`

	// Route settings used when the caller omits them
	DefaultGasPricePerLiter    float64 `mapstructure:"default_gas_price_per_liter" default:"1.50"`
	DefaultFuelEfficiency      float64 `mapstructure:"default_fuel_efficiency" default:"10.0"`
	DefaultTimeValuePerHour    float64 `mapstructure:"default_time_value_per_hour" default:"15.0"`
	DefaultTimePerStoreMinutes int     `mapstructure:"default_time_per_store_minutes" default:"30"`

	// Circuit breaker around the route provider
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		MaxBasketItems:             100,
		ProviderTimeout:            30 * time.Second,
		KmPerDegree:                111.0,
		RoadCurvature:              1.3,
		AverageSpeedKmh:            40.0,
		DefaultGasPricePerLiter:    1.50,
		DefaultFuelEfficiency:      10.0,
		DefaultTimeValuePerHour:    15.0,
		DefaultTimePerStoreMinutes: 30,
		CircuitBreaker:             *DefaultCircuitBreakerConfig(),
	}
}

// DefaultRouteSettings returns the route settings applied when a request omits them.
func (c *Config) DefaultRouteSettings() RouteSettings {
	return RouteSettings{
		GasPricePerLiter:    c.DefaultGasPricePerLiter,
		FuelEfficiency:      c.DefaultFuelEfficiency,
		TimeValuePerHour:    c.DefaultTimeValuePerHour,
		TimePerStoreMinutes: c.DefaultTimePerStoreMinutes,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.MaxBasketItems < 1 {
		return ErrInvalidConfig{Field: "max_basket_items", Reason: "must be at least 1"}
	}
	if c.ProviderTimeout <= 0 {
		return ErrInvalidConfig{Field: "provider_timeout", Reason: "must be positive"}
	}
	if c.KmPerDegree <= 0 {
		return ErrInvalidConfig{Field: "km_per_degree", Reason: "must be positive"}
	}
	if c.RoadCurvature < 1.0 {
		return ErrInvalidConfig{Field: "road_curvature", Reason: "must be >= 1.0"}
	}
	if c.AverageSpeedKmh <= 0 {
		return ErrInvalidConfig{Field: "average_speed_kmh", Reason: "must be positive"}
	}
	if err := c.DefaultRouteSettings().Validate(); err != nil {
		return ErrInvalidConfig{Field: "default route settings", Reason: err.Error()}
	}
	if c.CircuitBreaker.MaxFailures < 1 {
		return ErrInvalidConfig{Field: "circuit_breaker.max_failures", Reason: "must be at least 1"}
	}
	if c.CircuitBreaker.ResetTimeout <= 0 {
		return ErrInvalidConfig{Field: "circuit_breaker.reset_timeout", Reason: "must be positive"}
	}
	if c.CircuitBreaker.HalfOpenMaxCalls < 1 {
		return ErrInvalidConfig{Field: "circuit_breaker.half_open_max_calls", Reason: "must be at least 1"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
