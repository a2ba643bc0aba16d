package main

import (
	"fmt"
	"os"

	"tradejournal/internal/cli"
	"tradejournal/internal/config"
	"tradejournal/internal/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
