package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "trading-journal/internal/errors"
)

func TestLoad_WritesTemplateAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "config.toml"))
	assert.Equal(t, "local", cfg.Journal.UserID)
	assert.Equal(t, 1, cfg.Journal.RestDaysPerWeek)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 10.0, cfg.API.RateLimit)
	assert.Equal(t, 20, cfg.API.RateBurst)
	assert.Equal(t, dir, cfg.Dir)

	cfg.API.RateBurst = -1
	assert.ErrorIs(t, cfg.Validate(), jerrors.ErrConfigInvalid)
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[journal]
user_id = "trader-42"
timezone = "Europe/London"
rest_days_per_week = 2

[database]
driver = "sqlite3"
dsn = "/tmp/other.db"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "trader-42", cfg.Journal.UserID)
	assert.Equal(t, 2, cfg.Journal.RestDaysPerWeek)
	assert.Equal(t, "/tmp/other.db", cfg.Database.DSN)
	assert.Equal(t, "Europe/London", cfg.Location().String())
}

func TestLoad_DotEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JOURNAL_USER_ID=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("JOURNAL_USER_ID") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Journal.UserID)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Journal:  JournalConfig{UserID: "u", Timezone: "UTC", RestDaysPerWeek: 1},
			Database: DatabaseConfig{Driver: "sqlite3", DSN: "x.db"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"empty user", func(c *Config) { c.Journal.UserID = "" }, false},
		{"bad timezone", func(c *Config) { c.Journal.Timezone = "Mars/Olympus" }, false},
		{"too many rest days", func(c *Config) { c.Journal.RestDaysPerWeek = 8 }, false},
		{"negative rest days", func(c *Config) { c.Journal.RestDaysPerWeek = -1 }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"postgres", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, jerrors.Is(err, jerrors.ErrConfigInvalid), "got %v", err)
			}
		})
	}
}
