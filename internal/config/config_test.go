package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:          "8080",
		Env:           "development",
		DBDriver:      "postgres",
		DBSchemaMode:  "auto",
		DBPassword:    "password",
		SessionSecret: strings.Repeat("s", 40),
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development", func(_ *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing session secret", func(c *Config) { c.SessionSecret = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"unknown schema mode", func(c *Config) { c.DBSchemaMode = "hybrid" }, true},
		{"sql mode on sqlite", func(c *Config) { c.DBDriver = "sqlite"; c.DBSchemaMode = "sql" }, true},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.SessionSecret = defaultSessionSecret
			c.SecureCookies = true
			c.DBPassword = "strong-password"
		}, true},
		{"production short secret", func(c *Config) {
			c.Env = "production"
			c.SessionSecret = "short"
			c.SecureCookies = true
			c.DBPassword = "strong-password"
		}, true},
		{"production weak db password", func(c *Config) {
			c.Env = "prod"
			c.SecureCookies = true
		}, true},
		{"production insecure cookies", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "strong-password"
		}, true},
		{"production ok", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "strong-password"
			c.SecureCookies = true
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_SessionTTL(t *testing.T) {
	c := &Config{}
	assert.Equal(t, 24*time.Hour, c.SessionTTL())

	c.SessionTTLHours = 2
	assert.Equal(t, 2*time.Hour, c.SessionTTL())
}

func TestConfig_DSN(t *testing.T) {
	c := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "blog"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=blog sslmode=disable", c.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/blog?sslmode=disable", c.MigrateURL())
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("DB_SCHEMA_MODE", "AUTO")
	t.Setenv("SESSION_SECRET", strings.Repeat("x", 32))
	t.Setenv("PORT", "9999")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "auto", c.DBSchemaMode)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "INKWELL_SESSION", c.SessionCookieName)
}
