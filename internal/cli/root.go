// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradejournal/internal/config"
	"tradejournal/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	dataStore store.DataStore
}

// Store opens the SQLite store on first use and caches it.
func (a *App) Store() (store.DataStore, error) {
	if a.dataStore != nil {
		return a.dataStore, nil
	}
	if err := os.MkdirAll(filepath.Dir(a.Config.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	st, err := store.NewSQLiteStore(a.Config.Database.Path)
	if err != nil {
		return nil, err
	}
	a.dataStore = st
	return st, nil
}

// CloseStore closes the store if it was opened.
func (a *App) CloseStore() {
	if a.dataStore != nil {
		_ = a.dataStore.Close()
		a.dataStore = nil
	}
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "tradejournal",
		Short: "Personal trading journal",
		Long: `Record trades against a trading plan, close them with exit prices,
track capital additions, and review aggregate performance statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(newServeCmd(app))
	addPlanCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addCapitalCommands(rootCmd, app)
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tradejournal %s\n", Version)
		},
	}
}
