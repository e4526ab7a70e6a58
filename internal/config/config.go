package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	SQLitePath    string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	OpenAIAPIKey  string
	OpenAIModel   string
	AITimeout     time.Duration
	LogLevel      string
	LogFile       string
}

// Load reads the configuration from the environment. Variables in a .env
// file in the working directory are applied first and never override
// variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "ledger"),
		DBPassword:    getEnv("DB_PASSWORD", "ledgerpassword"),
		DBName:        getEnv("DB_NAME", "consultant_ledger"),
		SQLitePath:    getEnv("SQLITE_PATH", "ledger.db"),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		AITimeout:     getDuration("AI_TIMEOUT", 20*time.Second),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
	}
}

// Validate returns every configuration problem joined into one error.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "mysql", "postgres":
		if c.DBHost == "" || c.DBName == "" {
			errs = append(errs, fmt.Errorf("DB_HOST and DB_NAME are required for driver %s", c.DBDriver))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for driver sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.GinMode == "release" && c.SessionSecret == "default-secret-key-change-me" {
		errs = append(errs, errors.New("SESSION_SECRET must be changed in release mode"))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}
