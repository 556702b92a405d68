package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal/config"
	"github.com/Alturino/marketplace/internal/log"
)

type MigrationDirection string

const (
	MigrationUp   MigrationDirection = "up"
	MigrationDown MigrationDirection = "down"
)

func RunMigration(c context.Context, dbConfig config.Database, direction MigrationDirection) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main RunMigration").
		Str(log.KeyMigrationDirection, string(direction)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "opening sql.DB instance").Logger()
	logger.Info().Msg("opening sql.DB instance")
	db, err := sql.Open("postgres", dbConfig.URL())
	if err != nil {
		err = fmt.Errorf("failed opening sql.DB instance with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer db.Close()
	logger.Info().Msg("opened sql.DB instance")

	logger = logger.With().Str(log.KeyProcess, "initializing db driver").Logger()
	logger.Info().Msg("initializing db driver")
	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: dbConfig.Name})
	if err != nil {
		err = fmt.Errorf("failed creating postgres driver to do migration with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("initialized db driver")

	logger = logger.With().Str(log.KeyProcess, "initializing migration").Logger()
	logger.Info().Msg("initializing migration")
	migration, err := migrate.NewWithDatabaseInstance(dbConfig.MigrationPath, dbConfig.Name, driver)
	if err != nil {
		err = fmt.Errorf("failed initializing migration with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("initialized migration")

	logger = logger.With().Str(log.KeyProcess, "migrating "+string(direction)).Logger()
	logger.Info().Msgf("migrating %s", direction)
	switch direction {
	case MigrationDown:
		err = migration.Down()
	default:
		err = migration.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		err = fmt.Errorf("failed migration %s with error=%w", direction, err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msgf("successed migration %s", direction)

	return nil
}
