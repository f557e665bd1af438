package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robalobadob/sevenboom/internal/opsauth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for the ops endpoints",
	Long:  `Signs a token with OPS_JWT_SECRET. Send it as "Authorization: Bearer <token>" to /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.OpsJWTSecret == "" {
			return errors.New("OPS_JWT_SECRET is not set")
		}
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			ttl = cfg.OpsTokenTTL
		}
		tok, exp, err := opsauth.Sign(cfg.OpsJWTSecret, subject, ttl)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.UTC().Format("2006-01-02T15:04:05Z"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("subject", "ops", "Token subject")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default OPS_TOKEN_TTL)")
}
