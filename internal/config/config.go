package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	MergePolicyAppend  = "append"
	MergePolicyReplace = "replace"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Ingestion IngestionConfig
	Breaker   BreakerConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type RedisConfig struct {
	URL string
	TTL time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type AuthConfig struct {
	// JWTSecret enables bearer authentication when set.
	JWTSecret string
}

type IngestionConfig struct {
	MergePolicy         string
	CoordinateTolerance float64
}

type BreakerConfig struct {
	FailureThreshold int
	OpenTimeout      time.Duration
}

// ConfigError describes a single invalid setting.
type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnv("PORT", "8080"),
		},
		Mongo: NewMongoConfig(),
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: getEnvAsDuration("CACHE_TTL", 30*time.Second),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Ingestion: IngestionConfig{
			MergePolicy:         strings.ToLower(getEnv("MERGE_POLICY", MergePolicyAppend)),
			CoordinateTolerance: getEnvAsFloat("COORDINATE_TOLERANCE", 0),
		},
		Breaker: BreakerConfig{
			FailureThreshold: getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
			OpenTimeout:      getEnvAsDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Mongo.URI == "" && !c.Mongo.TestMode {
		return &ConfigError{Field: "MONGODB_URI", Message: "required when not in test mode"}
	}
	if c.Mongo.Timeout <= 0 {
		return &ConfigError{Field: "STORE_TIMEOUT", Value: c.Mongo.Timeout, Message: "must be positive"}
	}
	switch c.Ingestion.MergePolicy {
	case MergePolicyAppend, MergePolicyReplace:
	default:
		return &ConfigError{Field: "MERGE_POLICY", Value: c.Ingestion.MergePolicy, Message: "must be append or replace"}
	}
	if c.Ingestion.CoordinateTolerance < 0 {
		return &ConfigError{Field: "COORDINATE_TOLERANCE", Value: c.Ingestion.CoordinateTolerance, Message: "must not be negative"}
	}
	if c.Breaker.FailureThreshold <= 0 {
		return &ConfigError{Field: "BREAKER_FAILURE_THRESHOLD", Value: c.Breaker.FailureThreshold, Message: "must be positive"}
	}
	return nil
}

func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
