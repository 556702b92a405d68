package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal/config"
	"github.com/Alturino/marketplace/internal/constants"
	"github.com/Alturino/marketplace/internal/infra"
	"github.com/Alturino/marketplace/internal/log"
)

func runMigration(c context.Context, direction infra.MigrationDirection) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main runMigration").
		Str(log.KeyMigrationDirection, string(direction)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.ConfigFileName)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "migrating database").Logger()
	logger.Info().Msg("migrating database")
	c = logger.WithContext(c)
	if err := infra.RunMigration(c, cfg.Database, direction); err != nil {
		err = fmt.Errorf("failed migrating database with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("migrated database")

	return nil
}
