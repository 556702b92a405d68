package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alturino/marketplace/internal/constants"
	"github.com/Alturino/marketplace/internal/infra"
	"github.com/Alturino/marketplace/internal/log"
)

func Start() {
	logger := log.InitLogger(constants.LogFilePath, os.Getenv("APPLICATION_ENV")).
		With().
		Str(log.KeyAppName, constants.AppMarketplace).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: constants.AppMarketplace}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(cmd.Context(), infra.MigrationUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert every applied migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(cmd.Context(), infra.MigrationDown)
			},
		},
	)
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the marketplace http server",
			Run: func(cmd *cobra.Command, args []string) {
				runServer(cmd.Context())
			},
		},
		migrateCmd,
	)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
