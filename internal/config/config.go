package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NewRelic   NewRelicConfig
	Dispatch   DispatchConfig
	Fare       FareConfig
	Routing    RoutingConfig
	Kafka      KafkaConfig
	Push       PushConfig
	Stripe     StripeConfig
	Worker     WorkerConfig
	Migrations string
	DevMode    bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
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

// DispatchConfig tunes candidate discovery and the accept race.
type DispatchConfig struct {
	DefaultScanRadiusKm  float64
	MaxAcceptanceRangeKm float64
	CandidateLimit       int
	LockTTL              time.Duration
}

// FareConfig holds pricing parameters.
type FareConfig struct {
	BaseFare        float64
	PerKm           float64
	PerMinute       float64
	MinimumFare     float64
	PeakMultiplier  float64
	CancellationFee float64
	TolerancePct    float64
	Currency        string
}

// RoutingConfig holds external routing and geocoding endpoints.
type RoutingConfig struct {
	OSRMEndpoint      string
	NominatimEndpoint string
	UserAgent         string
}

// KafkaConfig holds the event mirror settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// PushConfig holds push gateway settings.
type PushConfig struct {
	Endpoint  string
	ServerKey string
	Enabled   bool
}

// StripeConfig holds payment gateway settings.
type StripeConfig struct {
	APIKey  string
	Enabled bool
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	SweepInterval time.Duration
	MaxSessionAge time.Duration
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
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "taxi_dispatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "taxi-dispatch-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Dispatch: DispatchConfig{
			DefaultScanRadiusKm:  getFloatEnv("DISPATCH_DEFAULT_SCAN_RADIUS_KM", 10),
			MaxAcceptanceRangeKm: getFloatEnv("DISPATCH_MAX_ACCEPTANCE_RANGE_KM", 15),
			CandidateLimit:       getIntEnv("DISPATCH_CANDIDATE_LIMIT", 20),
			LockTTL:              getDurationEnv("DISPATCH_LOCK_TTL", 10*time.Second),
		},
		Fare: FareConfig{
			BaseFare:        getFloatEnv("FARE_BASE", 5),
			PerKm:           getFloatEnv("FARE_PER_KM", 1.5),
			PerMinute:       getFloatEnv("FARE_PER_MINUTE", 0.5),
			MinimumFare:     getFloatEnv("FARE_MINIMUM", 0),
			PeakMultiplier:  getFloatEnv("FARE_PEAK_MULTIPLIER", 1),
			CancellationFee: getFloatEnv("FARE_CANCELLATION_FEE", 2),
			TolerancePct:    getFloatEnv("FARE_TOLERANCE_PCT", 0.02),
			Currency:        getEnv("FARE_CURRENCY", "usd"),
		},
		Routing: RoutingConfig{
			OSRMEndpoint:      getEnv("OSRM_ENDPOINT", "https://router.project-osrm.org"),
			NominatimEndpoint: getEnv("NOMINATIM_ENDPOINT", "https://nominatim.openstreetmap.org"),
			UserAgent:         getEnv("NOMINATIM_USER_AGENT", "taxi-dispatch/1.0"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "ride-events"),
			Enabled: getBoolEnv("KAFKA_ENABLED", false),
		},
		Push: PushConfig{
			Endpoint:  getEnv("PUSH_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
			ServerKey: getEnv("PUSH_SERVER_KEY", ""),
			Enabled:   getBoolEnv("PUSH_ENABLED", false),
		},
		Stripe: StripeConfig{
			APIKey:  getEnv("STRIPE_API_KEY", ""),
			Enabled: getBoolEnv("STRIPE_ENABLED", false),
		},
		Worker: WorkerConfig{
			SweepInterval: getDurationEnv("SESSION_SWEEP_INTERVAL", 5*time.Minute),
			MaxSessionAge: getDurationEnv("SESSION_MAX_AGE", time.Hour),
		},
		Migrations: getEnv("MIGRATIONS_DIR", "migrations"),
		DevMode:    getBoolEnv("DEV_MODE", false),
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

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		return cast.ToFloat64(value)
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
