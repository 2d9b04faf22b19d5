package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("DRIVE_MAX_FOLDERS", "")
	t.Setenv("CLOCK_INTERVAL", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, "https://abc.supabase.co/auth/v1/.well-known/jwks.json", cfg.SupabaseJWKSURL)
	assert.Equal(t, "gem-key", cfg.GoogleAPIKey, "drive key falls back to the gemini key")
	assert.Equal(t, DefaultDriveMaxFolders, cfg.DriveMaxFolders)
	assert.Equal(t, DefaultClockInterval, cfg.ClockInterval)
	assert.Equal(t, DefaultGeminiModel, cfg.GeminiModel)
	assert.True(t, cfg.Debug)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DRIVE_MAX_FOLDERS", "12")
	t.Setenv("CLOCK_INTERVAL", "5s")
	t.Setenv("DEBUG", "")

	cfg := Load()

	assert.Equal(t, "prod_", cfg.TablePrefix)
	assert.Equal(t, 12, cfg.DriveMaxFolders)
	assert.Equal(t, 5*time.Second, cfg.ClockInterval)
	assert.False(t, cfg.Debug)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DRIVE_MAX_FOLDERS", "-3")
	t.Setenv("CLOCK_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, DefaultDriveMaxFolders, cfg.DriveMaxFolders)
	assert.Equal(t, DefaultClockInterval, cfg.ClockInterval)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_DB_URL")

	cfg = &Config{SupabaseURL: "https://x.supabase.co", SupabaseDBURL: "postgres://localhost/db"}
	assert.NoError(t, cfg.Validate())
}
