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
		Env:                   "development",
		Port:                  "5000",
		JWTSecret:             "secure-secret-at-least-32-chars-long",
		DBPassword:            "secure-password",
		DBSSLMode:             "require",
		ProfileNotFoundStatus: 400,
		PostNotFoundStatus:    404,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid development", func(_ *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Negative ttl", func(c *Config) { c.JWTTTL = -time.Hour }, true},
		{"Profile not-found status 404", func(c *Config) { c.ProfileNotFoundStatus = 404 }, false},
		{"Profile not-found status 500", func(c *Config) { c.ProfileNotFoundStatus = 500 }, true},
		{"Post not-found status 0", func(c *Config) { c.PostNotFoundStatus = 0 }, true},
		{"Production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"Production with short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"Production with weak db password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"Production with disabled ssl", func(c *Config) {
			c.Env = "prod"
			c.DBSSLMode = "disable"
		}, true},
		{"Production with database url", func(c *Config) {
			c.Env = "production"
			c.DatabaseURL = "postgres://u:p@db/devconnector?sslmode=require"
			c.DBPassword = ""
			c.DBSSLMode = ""
		}, false},
		{"Production valid", func(c *Config) { c.Env = "production" }, false},
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

func TestLoadConfig_DefaultsAndNormalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("GITHUB_API_URL", "https://github.example.com/api/")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "https://github.example.com/api", c.GithubAPIURL)
	assert.Equal(t, 100*time.Hour, c.JWTTTL)
	assert.Equal(t, 400, c.ProfileNotFoundStatus)
	assert.Equal(t, 404, c.PostNotFoundStatus)
	assert.Equal(t, "hybrid", c.DBSchemaMode)
}

func TestLoadConfig_EnvOverridesNotFoundStatus(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("PROFILE_NOT_FOUND_STATUS", "404")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 404, c.ProfileNotFoundStatus)
	assert.False(t, c.IsProduction())
}
