package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                      "development",
		Port:                     "8000",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		RefreshTokenSecret:       "another-secret-at-least-32-chars-long",
		AccessTokenTTLMinutes:    60,
		RefreshTokenTTLHours:     240,
		DBPassword:               "secure-password",
		DBSSLMode:                "require",
		DBMaxOpenConns:           10,
		DBConnMaxLifetimeMinutes: 1,
		OTPTTLSeconds:            300,
		RedisURL:                 "localhost:6379",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Port = "" }},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }},
		{"zero access ttl", func(c *Config) { c.AccessTokenTTLMinutes = 0 }},
		{"zero pool size", func(c *Config) { c.DBMaxOpenConns = 0 }},
		{"zero otp ttl", func(c *Config) { c.OTPTTLSeconds = 0 }},
		{"storage without bucket", func(c *Config) { c.StorageEnabled = true }},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}},
		{"short refresh secret in production", func(c *Config) {
			c.Env = "production"
			c.RefreshTokenSecret = "short"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	c := validConfig()
	assert.Equal(t, time.Hour, c.AccessTokenTTL())
	assert.Equal(t, 240*time.Hour, c.RefreshTokenTTL())
	assert.Equal(t, 5*time.Minute, c.OTPTTL())
	assert.Equal(t, 10*time.Second, c.QueryTimeout())

	c.DBQueryTimeoutSeconds = 3
	assert.Equal(t, 3*time.Second, c.QueryTimeout())
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 24*time.Hour, c.AccessTokenTTL())
	assert.Equal(t, 10*24*time.Hour, c.RefreshTokenTTL())
	assert.Equal(t, 300, c.OTPTTLSeconds)
	assert.Equal(t, c.JWTSecret, c.RefreshTokenSecret)
	assert.Equal(t, "hybrid", c.DBSchemaMode)
}

func TestLoadConfig_MissingProfileFails(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "staging-does-not-exist")

	_, err := LoadConfig()
	assert.Error(t, err)
}
