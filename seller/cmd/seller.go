package cmd

import (
	"context"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal/constants"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/seller/internal/controller"
	"github.com/Alturino/marketplace/seller/internal/service"
)

// AttachSellerService mounts the analytics routes. Time buckets and
// time frames are computed in location.
func AttachSellerService(
	c context.Context,
	protected *mux.Router,
	store repository.Store,
	location *time.Location,
) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppSeller).
		Str(log.KeyTag, "main AttachSellerService").
		Str("location", location.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing seller service").Logger()
	logger.Info().Msg("initializing seller service")
	sellerService := service.NewSellerService(store, location)
	logger.Info().Msg("initialized seller service")

	logger = logger.With().Str(log.KeyProcess, "initializing seller controller").Logger()
	logger.Info().Msg("initializing seller controller")
	controller.AttachSellerController(protected, sellerService)
	logger.Info().Msg("initialized seller controller")
}
