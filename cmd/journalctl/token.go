package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayjournal/backend/internal/config"
	"github.com/dayjournal/backend/internal/services"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		Long:  `Signs an HS256 token with JWT_SECRET_KEY. The server only checks tokens when that secret is set.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Auth.Enabled() {
				return errors.New("JWT_SECRET_KEY is not set")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			token, expiresAt, err := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl).Issue(subject)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "journal-user", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_TOKEN_TTL)")
	return cmd
}
