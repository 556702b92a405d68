package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal/constants"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/wishlist/internal/controller"
	"github.com/Alturino/marketplace/wishlist/internal/service"
)

func AttachWishlistService(c context.Context, protected *mux.Router, store repository.Store) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppWishlist).
		Str(log.KeyTag, "main AttachWishlistService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing wishlist service").Logger()
	logger.Info().Msg("initializing wishlist service")
	wishlistService := service.NewWishlistService(store)
	logger.Info().Msg("initialized wishlist service")

	logger = logger.With().Str(log.KeyProcess, "initializing wishlist controller").Logger()
	logger.Info().Msg("initializing wishlist controller")
	controller.AttachWishlistController(protected, wishlistService)
	logger.Info().Msg("initialized wishlist controller")
}
