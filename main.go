package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/sevenboom/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "sevenboom",
	Short: "Seven Boom voice-assistant webhook",
	// With no subcommand the server starts, so the binary can run as-is on a PaaS.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("sevenboom exited")
	}
}

// loadConfig parses the environment and configures the global logger from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return cfg, nil
}
