package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"ENV", "LOG_LEVEL", "SECRET_KEY", "ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES",
	"REFRESH_TOKEN_EXPIRE_MINUTES", "ENABLE_ADMIN", "BASE_DIR", "DATABASE_URL", "SQLITE_PATH",
	"DB_MAX_RETRIES", "EMAIL_TYPE", "EMAIL_HOST_NAME", "EMAIL_HOST_PORT", "EMAIL_HOST_USERNAME",
	"EMAIL_HOST_PASSWORD", "AUTH_SERVICE_TOKEN", "REDIS_URL", "OTP_LENGTH", "OTP_EXPIRE_MINUTES",
	"OTP_MAX_REQUESTS_PER_HOUR", "OTP_PURGE_INTERVAL_MINUTES", "ADMIN_EMAIL", "ADMIN_PASSWORD",
}

// cleanEnv unsets every variable LoadConfig reads and disables dotenv loading
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("ENV_FILE", "")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cleanEnv(t)
	t.Setenv("BASE_DIR", "/srv/mailroom")
	os.Unsetenv("DATABASE_URL")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, int64(1440), cfg.AccessTokenExpireMinutes)
	assert.Equal(t, int64(10080), cfg.RefreshTokenExpireMinutes)
	assert.False(t, cfg.EnableAdmin)
	assert.Equal(t, filepath.Join("/srv/mailroom", "db", "dev.db"), cfg.SQLitePath)
	assert.Nil(t, cfg.EmailHostPort)
	assert.Equal(t, int64(6), cfg.OTPLength)
}

func TestLoadConfig_DatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		url     string
		sqlite  string
		wantURL string
		wantErr error
	}{
		{
			name:    "development derives sqlite url",
			env:     "development",
			sqlite:  "/tmp/mailroom/dev.db",
			wantURL: "sqlite:///tmp/mailroom/dev.db",
		},
		{
			name:    "test behaves like development",
			env:     "test",
			sqlite:  "/tmp/mailroom/test.db",
			wantURL: "sqlite:///tmp/mailroom/test.db",
		},
		{
			name:    "production without url fails",
			env:     "production",
			wantErr: ErrDatabaseURLRequired,
		},
		{
			name:    "production keeps explicit url",
			env:     "production",
			url:     "postgresql://mail:secret@db:5432/mailroom?sslmode=require",
			wantURL: "postgresql://mail:secret@db:5432/mailroom?sslmode=require",
		},
		{
			name:    "development keeps explicit url",
			env:     "development",
			url:     "postgres://localhost/mailroom",
			sqlite:  "/tmp/ignored.db",
			wantURL: "postgres://localhost/mailroom",
		},
		{
			name:    "unknown environment",
			env:     "staging",
			wantErr: ErrUnknownEnvironment,
		},
		{
			name:    "environment value is case sensitive",
			env:     "Production",
			wantErr: ErrUnknownEnvironment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv("ENV", tt.env)
			if tt.url != "" {
				t.Setenv("DATABASE_URL", tt.url)
			} else {
				os.Unsetenv("DATABASE_URL")
			}
			if tt.sqlite != "" {
				t.Setenv("SQLITE_PATH", tt.sqlite)
			}

			cfg, err := LoadConfig()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, cfg.DatabaseURL)
		})
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"non numeric expiry", "ACCESS_TOKEN_EXPIRE_MINUTES", "soon", ErrInvalidValue},
		{"zero expiry", "REFRESH_TOKEN_EXPIRE_MINUTES", "0", ErrInvalidValue},
		{"bad bool", "ENABLE_ADMIN", "maybe", ErrInvalidValue},
		{"bad port", "EMAIL_HOST_PORT", "70000", ErrInvalidValue},
		{"bad email type", "EMAIL_TYPE", "carrier-pigeon", ErrInvalidValue},
		{"otp too short", "OTP_LENGTH", "2", ErrInvalidValue},
		{"rsa algorithm", "ALGORITHM", "RS256", ErrUnsupportedAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv("SQLITE_PATH", "/tmp/mailroom.db")
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig_EmailSettings(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SQLITE_PATH", "/tmp/mailroom.db")
	t.Setenv("EMAIL_TYPE", "smtp")
	t.Setenv("EMAIL_HOST_NAME", "smtp.example.com")
	t.Setenv("EMAIL_HOST_PORT", "587")
	t.Setenv("EMAIL_HOST_USERNAME", "noreply@example.com")
	t.Setenv("EMAIL_HOST_PASSWORD", "hunter2")
	t.Setenv("ENABLE_ADMIN", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "SMTP", cfg.EmailType)
	assert.Equal(t, "smtp.example.com", cfg.EmailHostName)
	require.NotNil(t, cfg.EmailHostPort)
	assert.Equal(t, int64(587), *cfg.EmailHostPort)
	assert.True(t, cfg.EnableAdmin)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ENV=production\nDATABASE_URL=postgres://from-file/db\nLOG_LEVEL=debug\nADMIN_EMAIL=root@example.com\nADMIN_PASSWORD=from-file\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Cleanup(func() {
		os.Unsetenv("ENV")
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("ADMIN_EMAIL")
		os.Unsetenv("ADMIN_PASSWORD")
	})
	// Already-set variables are not overridden by the file
	t.Setenv("LOG_LEVEL", "WARN")
	os.Unsetenv("ENV")
	os.Unsetenv("DATABASE_URL")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "postgres://from-file/db", cfg.DatabaseURL)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "root@example.com", cfg.AdminEmail)
	assert.Equal(t, "from-file", cfg.AdminPassword)
}

func TestConfig_Redacted(t *testing.T) {
	cfg := &Config{
		SecretKey:         "super-secret",
		AdminPassword:     "admin-pass",
		EmailHostPassword: "smtp-pass",
		DatabaseURL:       "postgres://mail:hunter2@db:5432/mailroom",
		RedisURL:          "redis://localhost:6379/0",
	}

	out := cfg.Redacted()

	assert.Equal(t, "********", out.SecretKey)
	assert.Equal(t, "********", out.EmailHostPassword)
	assert.Equal(t, "********", out.AdminPassword)
	assert.Empty(t, out.AuthServiceToken)
	assert.Equal(t, "postgres://mail:********@db:5432/mailroom", out.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", out.RedisURL)
	assert.Equal(t, "super-secret", cfg.SecretKey)
}
