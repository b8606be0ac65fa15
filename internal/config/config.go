// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSessionSecret = "change-me-session-secret"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	DBDriver     string `mapstructure:"DB_DRIVER"`
	DBHost       string `mapstructure:"DB_HOST"`
	DBPort       string `mapstructure:"DB_PORT"`
	DBUser       string `mapstructure:"DB_USER"`
	DBPassword   string `mapstructure:"DB_PASSWORD"`
	DBName       string `mapstructure:"DB_NAME"`
	DBSSLMode    string `mapstructure:"DB_SSLMODE"`
	DBSQLitePath string `mapstructure:"DB_SQLITE_PATH"`
	DBSchemaMode string `mapstructure:"DB_SCHEMA_MODE"`

	SessionSecret     string `mapstructure:"SESSION_SECRET"`
	SessionTTLHours   int    `mapstructure:"SESSION_TTL_HOURS"`
	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	SecureCookies     bool   `mapstructure:"SECURE_COOKIES"`
	BcryptCost        int    `mapstructure:"BCRYPT_COST"`

	RedisURL string `mapstructure:"REDIS_URL"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "inkwell")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "inkwell")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SQLITE_PATH", "inkwell.db")
	viper.SetDefault("DB_SCHEMA_MODE", "auto")
	viper.SetDefault("SESSION_SECRET", defaultSessionSecret)
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("SESSION_COOKIE_NAME", "INKWELL_SESSION")
	viper.SetDefault("SECURE_COOKIES", false)
	viper.SetDefault("BCRYPT_COST", 10)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
}

// IsProduction reports whether the strict production rules apply.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// SessionTTL is the lifetime of a sign-in session.
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode,
	)
}

// MigrateURL builds the postgres:// URL form used by the migration runner.
func (c *Config) MigrateURL() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, sslMode)
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.DBSchemaMode {
	case "sql", "auto":
	default:
		return fmt.Errorf("unsupported DB_SCHEMA_MODE %q", c.DBSchemaMode)
	}
	if c.DBSchemaMode == "sql" && c.DBDriver != "postgres" {
		return errors.New("DB_SCHEMA_MODE=sql requires DB_DRIVER=postgres")
	}

	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters in production")
		}
		if c.DBDriver == "postgres" && (c.DBPassword == "password" || c.DBPassword == "") {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if !c.SecureCookies {
			return errors.New("SECURE_COOKIES must be enabled in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.SessionSecret) < 32 {
		log.Println("WARNING: SESSION_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
