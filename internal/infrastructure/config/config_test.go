package config

import (
	"os"
	"testing"

	"github.com/buchmeister/backend/internal/domain/numbering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"BM_APP_NAME":                  os.Getenv("BM_APP_NAME"),
		"BM_APP_ENV":                   os.Getenv("BM_APP_ENV"),
		"BM_APP_PORT":                  os.Getenv("BM_APP_PORT"),
		"BM_DATABASE_HOST":             os.Getenv("BM_DATABASE_HOST"),
		"BM_DATABASE_PORT":             os.Getenv("BM_DATABASE_PORT"),
		"BM_DATABASE_USER":             os.Getenv("BM_DATABASE_USER"),
		"BM_DATABASE_PASSWORD":         os.Getenv("BM_DATABASE_PASSWORD"),
		"BM_DATABASE_DBNAME":           os.Getenv("BM_DATABASE_DBNAME"),
		"BM_DATABASE_SSLMODE":          os.Getenv("BM_DATABASE_SSLMODE"),
		"BM_DATABASE_MAX_OPEN_CONNS":   os.Getenv("BM_DATABASE_MAX_OPEN_CONNS"),
		"BM_DATABASE_MAX_IDLE_CONNS":   os.Getenv("BM_DATABASE_MAX_IDLE_CONNS"),
		"BM_NUMBERING_INVOICE_PREFIX":  os.Getenv("BM_NUMBERING_INVOICE_PREFIX"),
		"BM_NUMBERING_INVOICE_MODE":    os.Getenv("BM_NUMBERING_INVOICE_MODE"),
		"BM_NUMBERING_INVOICE_PADDING": os.Getenv("BM_NUMBERING_INVOICE_PADDING"),
		"BM_STORAGE_PROVIDER":          os.Getenv("BM_STORAGE_PROVIDER"),
		"BM_TELEMETRY_ENABLED":         os.Getenv("BM_TELEMETRY_ENABLED"),
		"BM_TELEMETRY_SAMPLING_RATIO":  os.Getenv("BM_TELEMETRY_SAMPLING_RATIO"),
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

		assert.Equal(t, "buchmeister-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "buchmeister", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "stub", cfg.Storage.Provider)
	})

	t.Run("loads default number sequences", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, NumberingConfig{Prefix: "RE", Mode: "YEAR", Padding: 3}, cfg.Numbering[numbering.DocumentTypeInvoice])
		assert.Equal(t, NumberingConfig{Prefix: "AN", Mode: "YEAR", Padding: 3}, cfg.Numbering[numbering.DocumentTypeQuote])
		assert.Equal(t, NumberingConfig{Prefix: "KD", Mode: "CONTINUOUS", Padding: 3}, cfg.Numbering[numbering.DocumentTypeCustomer])
	})

	t.Run("loads values from environment variables with BM prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("BM_APP_NAME", "test-app")
		os.Setenv("BM_APP_ENV", "testing")
		os.Setenv("BM_APP_PORT", "9000")
		os.Setenv("BM_DATABASE_HOST", "testdb.local")
		os.Setenv("BM_DATABASE_PORT", "5433")
		os.Setenv("BM_DATABASE_USER", "testuser")
		os.Setenv("BM_DATABASE_PASSWORD", "testpass")
		os.Setenv("BM_DATABASE_DBNAME", "testdb")
		os.Setenv("BM_DATABASE_SSLMODE", "require")
		os.Setenv("BM_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("BM_DATABASE_MAX_IDLE_CONNS", "10")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	})

	t.Run("overrides number sequence from environment", func(t *testing.T) {
		clearEnv()
		os.Setenv("BM_NUMBERING_INVOICE_PREFIX", "RG")
		os.Setenv("BM_NUMBERING_INVOICE_MODE", "MONTH")
		os.Setenv("BM_NUMBERING_INVOICE_PADDING", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, NumberingConfig{Prefix: "RG", Mode: "MONTH", Padding: 5}, cfg.Numbering[numbering.DocumentTypeInvoice])
	})

	t.Run("rejects unknown number format mode at load", func(t *testing.T) {
		clearEnv()
		os.Setenv("BM_NUMBERING_INVOICE_MODE", "WEEKLY")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown number format mode")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("BM_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("BM_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("BM_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("rejects unknown storage provider", func(t *testing.T) {
		clearEnv()
		os.Setenv("BM_STORAGE_PROVIDER", "ftp")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.provider")
	})

	t.Run("telemetry defaults to disabled with collector defaults", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("rejects sampling ratio above 1", func(t *testing.T) {
		clearEnv()
		os.Setenv("BM_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"BM_APP_ENV":           os.Getenv("BM_APP_ENV"),
		"BM_DATABASE_PASSWORD": os.Getenv("BM_DATABASE_PASSWORD"),
		"BM_DATABASE_SSLMODE":  os.Getenv("BM_DATABASE_SSLMODE"),
		"BM_STORAGE_PROVIDER":  os.Getenv("BM_STORAGE_PROVIDER"),
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

	setValidProductionBase := func() {
		os.Setenv("BM_APP_ENV", "production")
		os.Setenv("BM_DATABASE_PASSWORD", "secure-password")
		os.Setenv("BM_DATABASE_SSLMODE", "require")
		os.Setenv("BM_STORAGE_PROVIDER", "s3")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("BM_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("BM_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects stub storage in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("BM_STORAGE_PROVIDER", "stub")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.provider cannot be 'stub' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestNumberingDefinitions(t *testing.T) {
	cfg := &Config{
		Numbering: map[string]NumberingConfig{
			numbering.DocumentTypeInvoice:  {Prefix: "RE", Mode: "YEAR", Padding: 3},
			numbering.DocumentTypeCustomer: {Prefix: "KD", Mode: "CONTINUOUS", Padding: 3},
		},
	}

	definitions, err := cfg.NumberingDefinitions()
	require.NoError(t, err)
	require.Len(t, definitions, 2)
	assert.Equal(t, numbering.ModeYear, definitions[numbering.DocumentTypeInvoice].Mode)
	assert.Equal(t, numbering.ModeContinuous, definitions[numbering.DocumentTypeCustomer].Mode)

	cfg.Numbering[numbering.DocumentTypeInvoice] = NumberingConfig{Prefix: "RE", Mode: "YEAR", Padding: 0}
	_, err = cfg.NumberingDefinitions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "padding")
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
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
