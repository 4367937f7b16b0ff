package config

import (
	"os"
	"time"

	"github.com/spf13/cast"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Bots     BotsConfig
	Orders   OrdersConfig
	Geocoder GeocoderConfig
}

// GeocoderConfig holds the Nominatim resolver settings.
type GeocoderConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// BotsConfig holds the outbound bot service endpoints and the notification
// worker settings.
type BotsConfig struct {
	DriverBaseURL    string
	PassengerBaseURL string
	RequestTimeout   time.Duration
	MaxAttempts      int
	RetryBackoff     time.Duration
	Workers          int
}

// OrdersConfig holds order lifecycle settings. StrictReassignment makes a
// conflicting driver write fail instead of silently keeping the stored
// driver.
type OrdersConfig struct {
	StrictReassignment bool
	CommissionPercent  int64
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "dispatch"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "dispatch-core"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Bots: BotsConfig{
			DriverBaseURL:    getEnv("DRIVER_BOT_URL", "http://localhost:8001"),
			PassengerBaseURL: getEnv("PASSENGER_BOT_URL", "http://localhost:8002"),
			RequestTimeout:   getDurationEnv("BOT_REQUEST_TIMEOUT", 10*time.Second),
			MaxAttempts:      getIntEnv("BOT_MAX_ATTEMPTS", 4),
			RetryBackoff:     getDurationEnv("BOT_RETRY_BACKOFF", 200*time.Millisecond),
			Workers:          getIntEnv("NOTIFY_WORKERS", 4),
		},
		Orders: OrdersConfig{
			StrictReassignment: getBoolEnv("ORDER_STRICT_REASSIGNMENT", false),
			CommissionPercent:  cast.ToInt64(getEnv("ORDER_COMMISSION_PERCENT", "5")),
		},
		Geocoder: GeocoderConfig{
			BaseURL: getEnv("GEOCODER_BASE_URL", ""),
			Timeout: getDurationEnv("GEOCODER_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		return cast.ToInt(value)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return cast.ToBool(value)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
