package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Journal Configuration

[server]
# HTTP listen address for the journal API
addr = ":8080"
# Origins allowed to call the API (the journal UI, typically)
allowed_origins = ["http://localhost:3000"]

[database]
# SQLite database file; defaults to the config directory
# path = "/path/to/journal.db"

[journal]
# Capital assumed for statistics when a plan has no capital figure
default_initial_capital = 1000.0
# Target risk/reward ratio used to suggest take-profit prices
default_risk_reward = 2.0

[advisor]
# Model for the optional AI performance review ("stats review").
# The API key is read from the OPENAI_API_KEY environment variable.
model = "gpt-4o-mini"

[logging]
# Log level: debug, info, warn, error
level = "info"
console = true
file = true
max_size_mb = 100
max_backups = 7
max_age_days = 30
`

// writeTemplate writes a commented config template so a first run leaves an
// editable file behind.
func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
