package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradejournal/internal/errors"
)

// clearEnv blanks the override variables so ambient values cannot leak into
// assertions about defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TRADEJOURNAL_ADDR", "")
	t.Setenv("TRADEJOURNAL_DB", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, filepath.Join(dir, "journal.db"), cfg.Database.Path)
	assert.Equal(t, 1000.0, cfg.Journal.DefaultInitialCapital)
	assert.Equal(t, 2.0, cfg.Journal.DefaultRiskReward)
	assert.Equal(t, "gpt-4o-mini", cfg.Advisor.Model)
	assert.Equal(t, "info", cfg.Logging.Level)

	// first run writes an editable template
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `
[server]
addr = ":9090"

[journal]
default_initial_capital = 5000.0
default_risk_reward = 3.0

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5000.0, cfg.Journal.DefaultInitialCapital)
	assert.Equal(t, 3.0, cfg.Journal.DefaultRiskReward)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// unset sections still default
	assert.Equal(t, "gpt-4o-mini", cfg.Advisor.Model)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	content := `
[journal]
default_initial_capital = -100.0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADEJOURNAL_ADDR", ":7000")
	t.Setenv("TRADEJOURNAL_DB", "/tmp/override.db")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "sk-test", cfg.Advisor.APIKey)
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "journal.db"},
		Journal:  JournalConfig{DefaultInitialCapital: 1000, DefaultRiskReward: 2},
	}
	assert.NoError(t, valid.Validate())

	missingAddr := *valid
	missingAddr.Server.Addr = ""
	assert.ErrorIs(t, missingAddr.Validate(), apperrors.ErrConfigInvalid)

	badRR := *valid
	badRR.Journal.DefaultRiskReward = 0
	assert.ErrorIs(t, badRR.Validate(), apperrors.ErrConfigInvalid)
}
