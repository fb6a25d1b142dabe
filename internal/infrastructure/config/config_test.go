package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"FULFILHUB_APP_NAME":          os.Getenv("FULFILHUB_APP_NAME"),
		"FULFILHUB_APP_ENV":           os.Getenv("FULFILHUB_APP_ENV"),
		"FULFILHUB_APP_PORT":          os.Getenv("FULFILHUB_APP_PORT"),
		"FULFILHUB_DATABASE_HOST":     os.Getenv("FULFILHUB_DATABASE_HOST"),
		"FULFILHUB_DATABASE_PORT":     os.Getenv("FULFILHUB_DATABASE_PORT"),
		"FULFILHUB_DATABASE_PASSWORD": os.Getenv("FULFILHUB_DATABASE_PASSWORD"),
		"FULFILHUB_DATABASE_SSLMODE":  os.Getenv("FULFILHUB_DATABASE_SSLMODE"),
		"FULFILHUB_JWT_SECRET":        os.Getenv("FULFILHUB_JWT_SECRET"),
		"FULFILHUB_BOL_SYNC_ENABLED":  os.Getenv("FULFILHUB_BOL_SYNC_ENABLED"),
		"BOL_SYNC_INTERVAL_MINUTES":   os.Getenv("BOL_SYNC_INTERVAL_MINUTES"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "fulfilhub-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "https://login.bol.com/token", cfg.Bol.TokenURL)
		assert.Equal(t, "https://api.bol.com/retailer", cfg.Bol.APIBaseURL)
		assert.Equal(t, 5, cfg.BolSync.IntervalMinutes)
		assert.Equal(t, 5*time.Minute, cfg.BolSync.Interval())
		assert.True(t, cfg.BolSync.Enabled, "sync must be on by default")
	})

	t.Run("sync can be disabled explicitly", func(t *testing.T) {
		clearEnv()
		os.Setenv("FULFILHUB_BOL_SYNC_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.BolSync.Enabled)
	})

	t.Run("loads values from environment variables with FULFILHUB prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("FULFILHUB_APP_NAME", "test-app")
		os.Setenv("FULFILHUB_APP_PORT", "9000")
		os.Setenv("FULFILHUB_DATABASE_HOST", "testdb.local")
		os.Setenv("FULFILHUB_DATABASE_PORT", "5433")
		os.Setenv("FULFILHUB_BOL_SYNC_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.True(t, cfg.BolSync.Enabled)
	})

	t.Run("reads sync interval from unprefixed variable", func(t *testing.T) {
		clearEnv()
		os.Setenv("BOL_SYNC_INTERVAL_MINUTES", "15")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 15, cfg.BolSync.IntervalMinutes)
		assert.Equal(t, 15*time.Minute, cfg.BolSync.Interval())
	})

	t.Run("unparseable sync interval falls back to default", func(t *testing.T) {
		clearEnv()
		os.Setenv("BOL_SYNC_INTERVAL_MINUTES", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.BolSync.IntervalMinutes)
	})

	t.Run("non-positive sync interval falls back to default", func(t *testing.T) {
		clearEnv()
		os.Setenv("BOL_SYNC_INTERVAL_MINUTES", "-3")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.BolSync.IntervalMinutes)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"FULFILHUB_APP_ENV":           os.Getenv("FULFILHUB_APP_ENV"),
		"FULFILHUB_JWT_SECRET":        os.Getenv("FULFILHUB_JWT_SECRET"),
		"FULFILHUB_DATABASE_PASSWORD": os.Getenv("FULFILHUB_DATABASE_PASSWORD"),
		"FULFILHUB_DATABASE_SSLMODE":  os.Getenv("FULFILHUB_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("FULFILHUB_APP_ENV", "production")
		os.Setenv("FULFILHUB_DATABASE_PASSWORD", "secure-password")
		os.Setenv("FULFILHUB_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("FULFILHUB_APP_ENV", "production")
		os.Setenv("FULFILHUB_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("FULFILHUB_DATABASE_PASSWORD", "secure-password")
		os.Setenv("FULFILHUB_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("FULFILHUB_APP_ENV", "production")
		os.Setenv("FULFILHUB_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("FULFILHUB_DATABASE_PASSWORD", "secure-password")
		os.Setenv("FULFILHUB_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}
