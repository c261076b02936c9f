package config

import (
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"energydash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Weather  WeatherConfig  `yaml:"weather"`
	Cache    CacheConfig    `yaml:"cache"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver       string `yaml:"driver" default:"postgres" validate:"oneof=postgres sqlite3"`
	URL          string `yaml:"url" validate:"required"`
	MaxOpenConns int    `yaml:"max_open_conns" default:"10" validate:"gte=1"`
	ResetOnBoot  bool   `yaml:"reset_on_boot"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `yaml:"port" default:"8080" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" default:"10485760" validate:"gt=0"`
}

// WeatherConfig holds Meteostat provider settings. An empty APIKey disables
// the provider; stored weather is used instead.
type WeatherConfig struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url" default:"https://meteostat.p.rapidapi.com" validate:"url"`
	Host           string        `yaml:"host" default:"meteostat.p.rapidapi.com"`
	DefaultStation string        `yaml:"default_station" default:"10637"`
	Timeout        time.Duration `yaml:"timeout" default:"10s"`
	CacheTTL       time.Duration `yaml:"cache_ttl" default:"6h"`
}

// CacheConfig selects the cache backend. An empty RedisAddr uses the in-process cache.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	Prefix        string `yaml:"prefix" default:"energydash"`
}

// AlertsConfig controls the scheduled alert sweep
type AlertsConfig struct {
	Enabled      bool   `yaml:"enabled" default:"true"`
	Schedule     string `yaml:"schedule" default:"@hourly" validate:"required"`
	LookbackDays int    `yaml:"lookback_days" default:"30" validate:"gte=2"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" default:"INFO"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

var validate = validator.New()

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	config := &Config{}
	if err := defaults.Set(config); err != nil {
		return nil, errors.Wrap(err, "failed to apply configuration defaults")
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

func applyEnv(config *Config) {
	db := &config.Database
	db.Driver = getEnvOrDefault("DB_DRIVER", db.Driver)
	db.URL = getEnvOrDefault("DATABASE_URL", db.URL)
	db.MaxOpenConns = getEnvIntOrDefault("DB_MAX_OPEN_CONNS", db.MaxOpenConns)
	db.ResetOnBoot = getEnvBoolOrDefault("DB_RESET_ON_BOOT", db.ResetOnBoot)

	srv := &config.Server
	srv.Port = getEnvOrDefault("PORT", srv.Port)
	srv.ReadTimeout = getEnvDurationOrDefault("SERVER_READ_TIMEOUT", srv.ReadTimeout)
	srv.WriteTimeout = getEnvDurationOrDefault("SERVER_WRITE_TIMEOUT", srv.WriteTimeout)
	srv.ShutdownTimeout = getEnvDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", srv.ShutdownTimeout)
	srv.MaxUploadBytes = int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", int(srv.MaxUploadBytes)))

	w := &config.Weather
	w.APIKey = getEnvOrDefault("METEOSTAT_API_KEY", w.APIKey)
	w.BaseURL = getEnvOrDefault("METEOSTAT_BASE_URL", w.BaseURL)
	w.DefaultStation = getEnvOrDefault("WEATHER_STATION", w.DefaultStation)
	w.Timeout = getEnvDurationOrDefault("WEATHER_TIMEOUT", w.Timeout)
	w.CacheTTL = getEnvDurationOrDefault("WEATHER_CACHE_TTL", w.CacheTTL)

	c := &config.Cache
	c.RedisAddr = getEnvOrDefault("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvIntOrDefault("REDIS_DB", c.RedisDB)

	a := &config.Alerts
	a.Enabled = getEnvBoolOrDefault("ALERT_SWEEP_ENABLED", a.Enabled)
	a.Schedule = getEnvOrDefault("ALERT_SWEEP_SPEC", a.Schedule)
	a.LookbackDays = getEnvIntOrDefault("ALERT_LOOKBACK_DAYS", a.LookbackDays)

	config.Log.Level = getEnvOrDefault("LOG_LEVEL", config.Log.Level)
	config.Log.Format = getEnvOrDefault("LOG_FORMAT", config.Log.Format)

	config.Metrics.Enabled = getEnvBoolOrDefault("METRICS_ENABLED", config.Metrics.Enabled)
	config.Metrics.Path = getEnvOrDefault("METRICS_PATH", config.Metrics.Path)
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if err := validate.Struct(config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
