package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/sevenboom/internal/httpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.AlexaVerify {
		log.Warn().Msg("alexa request verification is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(cfg)
	log.Info().Str("port", cfg.Port).Bool("verify", cfg.AlexaVerify).Msg("starting sevenboom")
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
