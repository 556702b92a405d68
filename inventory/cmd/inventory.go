package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal/constants"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/inventory/internal/controller"
	"github.com/Alturino/marketplace/inventory/internal/service"
)

func AttachInventoryService(c context.Context, public *mux.Router, protected *mux.Router, store repository.Store) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppInventory).
		Str(log.KeyTag, "main AttachInventoryService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing inventory service").Logger()
	logger.Info().Msg("initializing inventory service")
	inventoryService := service.NewInventoryService(store)
	logger.Info().Msg("initialized inventory service")

	logger = logger.With().Str(log.KeyProcess, "initializing inventory controller").Logger()
	logger.Info().Msg("initializing inventory controller")
	controller.AttachInventoryController(public, protected, inventoryService)
	logger.Info().Msg("initialized inventory controller")
}
