package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                      "development",
		DBDriver:                 "postgres",
		DBSSLMode:                "disable",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		DBPassword:               "secure-password",
		Port:                     "8080",
		TokenTTL:                 24 * time.Hour,
		DBConnMaxLifetimeMinutes: 1,
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

func TestConfig_ValidateSecrets(t *testing.T) {
	t.Run("default secret rejected in production", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.DBSSLMode = "require"
		c.JWTSecret = defaultJWTSecret
		assert.Error(t, c.Validate())
	})

	t.Run("short secret rejected in production", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.DBSSLMode = "require"
		c.JWTSecret = "short"
		assert.Error(t, c.Validate())
	})

	t.Run("short secret allowed in development", func(t *testing.T) {
		c := validConfig()
		c.JWTSecret = "short"
		assert.NoError(t, c.Validate())
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		c := validConfig()
		c.JWTSecret = ""
		assert.Error(t, c.Validate())
	})
}

func TestConfig_ValidateRuntimeValues(t *testing.T) {
	t.Run("zero token ttl", func(t *testing.T) {
		c := validConfig()
		c.TokenTTL = 0
		assert.Error(t, c.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		c := validConfig()
		c.DBDriver = "mysql"
		assert.Error(t, c.Validate())
	})

	t.Run("sqlite in production skips db password rules", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.DBDriver = "sqlite"
		c.DBPassword = ""
		c.DBSSLMode = ""
		assert.NoError(t, c.Validate())
	})
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("TOKEN_TTL")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("TOKEN_TTL", "2h")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 2*time.Hour, c.TokenTTL)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, "postgres", c.DBDriver)
}
