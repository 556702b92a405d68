package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal/config"
	"github.com/Alturino/marketplace/internal/constants"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/user/internal/controller"
	"github.com/Alturino/marketplace/user/internal/service"
)

type Mailer = service.Mailer

func AttachUserService(
	c context.Context,
	public *mux.Router,
	protected *mux.Router,
	store repository.Store,
	mailer Mailer,
	cfg *config.Config,
) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppUser).
		Str(log.KeyTag, "main AttachUserService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing user service").Logger()
	logger.Info().Msg("initializing user service")
	userService := service.NewUserService(store, mailer, cfg.Application, cfg.PasswordReset)
	logger.Info().Msg("initialized user service")

	logger = logger.With().Str(log.KeyProcess, "initializing user controller").Logger()
	logger.Info().Msg("initializing user controller")
	controller.AttachUserController(public, protected, userService)
	logger.Info().Msg("initialized user controller")
}
