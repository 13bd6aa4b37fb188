package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.ErrorIs(t, cfg.Validate(), ErrDatabaseURLRequired)

	cfg.DatabaseURL = "postgres://localhost:5432/gleamform"
	require.NoError(t, cfg.Validate())

	cfg.AccessTokenExpiration = 0
	require.Error(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
host: 0.0.0.0
port: "9090"
database_url: postgres://localhost:5432/gleamform
allow_origins:
  - https://forms.example.com
smtp:
  host: mail.example.com
  port: 587
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfgLog := &Log{}
	cfg := loadFromFile(defaultConfig(), path, cfgLog)

	require.Equal(t, "0.0.0.0", cfg.Host)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "postgres://localhost:5432/gleamform", cfg.DatabaseURL)
	require.Equal(t, []string{"https://forms.example.com"}, cfg.AllowOrigins)
	require.Equal(t, "mail.example.com", cfg.SMTP.Host)
	require.Equal(t, 587, cfg.SMTP.Port)
	// Untouched keys keep their defaults.
	require.Equal(t, DefaultSecret, cfg.Secret)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfgLog := &Log{}
	cfg := loadFromFile(defaultConfig(), filepath.Join(t.TempDir(), "absent.yaml"), cfgLog)
	require.Equal(t, defaultConfig(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/gleamform")
	t.Setenv("DEBUG", "true")
	t.Setenv("ACCESS_TOKEN_EXPIRATION", "30m")
	t.Setenv("ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SMTP_PORT", "2525")

	cfgLog := &Log{}
	cfg := loadFromEnv(defaultConfig(), cfgLog)

	require.Equal(t, "postgres://db:5432/gleamform", cfg.DatabaseURL)
	require.True(t, cfg.Debug)
	require.Equal(t, 30*time.Minute, cfg.AccessTokenExpiration)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowOrigins)
	require.Equal(t, 2525, cfg.SMTP.Port)
}

func TestLoadFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("DEBUG", "definitely")
	t.Setenv("REFRESH_TOKEN_EXPIRATION", "fortnight")

	cfgLog := &Log{}
	cfg := loadFromEnv(defaultConfig(), cfgLog)

	require.False(t, cfg.Debug)
	require.Equal(t, defaultConfig().RefreshTokenExpiration, cfg.RefreshTokenExpiration)
	require.NotEmpty(t, cfgLog.entries)
}
