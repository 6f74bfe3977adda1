package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayjournal/backend/internal/config"
	"github.com/dayjournal/backend/internal/database"
	"github.com/dayjournal/backend/internal/logging"
)

func newSetupCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the journal database and schema",
		Long: `Connects to the server's maintenance database, creates journal_db if it does not
exist, then creates the journal_entries table and its indexes. Safe to run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			logger := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
			return runSetup(ctx, cfg.Database, logger, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall time limit for provisioning")
	return cmd
}

func runSetup(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger, out io.Writer) error {
	fmt.Fprintf(out, "Provisioning %s on %s:%d (%s)\n", cfg.Name, cfg.Host, cfg.Port, cfg.Variant)

	created, err := database.EnsureDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "Database %s created\n", cfg.Name)
	} else {
		fmt.Fprintf(out, "Database %s already exists\n", cfg.Name)
	}

	src, err := database.OpenAdhoc(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := database.EnsureSchema(ctx, src); err != nil {
		return err
	}
	logger.Info("schema ready", slog.String("database", cfg.Name))

	fmt.Fprintln(out, "Schema ready")
	return nil
}
